package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserConfig_ActiveProfile(t *testing.T) {
	cfg := &UserConfig{
		CurrentProfile: "default",
		Profiles: map[string]Profile{
			"default": {DuckDB: "local.duckdb", Output: "table"},
			"lake":    {DuckDB: "lake.duckdb", Output: "json", S3Region: "eu-west-1"},
		},
	}

	tests := []struct {
		name       string
		override   string
		wantDuckDB string
		wantErr    string
	}{
		{name: "uses current profile", wantDuckDB: "local.duckdb"},
		{name: "override to lake", override: "lake", wantDuckDB: "lake.duckdb"},
		{name: "nonexistent profile", override: "nope", wantErr: `profile "nope" not found`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := cfg.ActiveProfile(tt.override)
			if tt.wantErr != "" {
				require.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantDuckDB, p.DuckDB)
		})
	}
}

func TestUserConfig_MissingCurrentProfile(t *testing.T) {
	cfg := &UserConfig{CurrentProfile: "gone", Profiles: map[string]Profile{}}
	p, err := cfg.ActiveProfile("")
	require.NoError(t, err)
	assert.Equal(t, Profile{}, p)
}

func TestLoadUserConfig_MissingFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadUserConfig()
	require.NoError(t, err)
	assert.Equal(t, "default", cfg.CurrentProfile)
	assert.Empty(t, cfg.Profiles)
}

func TestSaveAndLoadUserConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	want := &UserConfig{
		CurrentProfile: "lake",
		Profiles: map[string]Profile{
			"lake": {DuckDB: "lake.duckdb", MetaDB: "meta.sqlite", S3Endpoint: "localhost:9000"},
		},
	}
	require.NoError(t, SaveUserConfig(want))

	info, err := os.Stat(filepath.Join(home, ".duck", "projector.yaml"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := LoadUserConfig()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoadUserConfig_Malformed(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".duck"), 0o700))
	require.NoError(t, os.WriteFile(filepath.Join(home, ".duck", "projector.yaml"), []byte("profiles: [oops"), 0o600))

	_, err := LoadUserConfig()
	require.ErrorContains(t, err, "parse config")
}
