package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"duck-projection/internal/config"
	internaldb "duck-projection/internal/db"
	"duck-projection/internal/domain"
	"duck-projection/internal/engine"
)

func testConfig() *config.Config {
	return &config.Config{
		ScanEnabled:        true,
		RateLimitRPS:       100,
		RateLimitBurst:     100,
		CORSAllowedOrigins: []string{"*"},
	}
}

func TestNew_SeedsExampleProjection(t *testing.T) {
	writeDB, readDB := internaldb.OpenTestSQLite(t)
	duck, err := engine.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = duck.Close() })

	ctx := context.Background()
	a, err := New(ctx, Deps{Cfg: testConfig(), DuckDB: duck, WriteDB: writeDB, ReadDB: readDB})
	require.NoError(t, err)
	require.NotNil(t, a.Scanner)

	p, err := a.Projections.Get(ctx, "example_events")
	require.NoError(t, err)
	assert.Len(t, p.Fields, 3)

	// A second wiring does not duplicate the seed.
	_, err = New(ctx, Deps{Cfg: testConfig(), DuckDB: duck, WriteDB: writeDB, ReadDB: readDB})
	require.NoError(t, err)
	_, total, err := a.Projections.List(ctx, domain.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestNew_ScanDisabled(t *testing.T) {
	writeDB, readDB := internaldb.OpenTestSQLite(t)
	cfg := testConfig()
	cfg.ScanEnabled = false

	a, err := New(context.Background(), Deps{Cfg: cfg, WriteDB: writeDB, ReadDB: readDB})
	require.NoError(t, err)
	assert.Nil(t, a.Scanner)

	_, err = a.Projections.Infer(context.Background(), engine.Source{Table: "events"})
	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestRouter_ServesAPI(t *testing.T) {
	writeDB, readDB := internaldb.OpenTestSQLite(t)
	a, err := New(context.Background(), Deps{Cfg: testConfig(), WriteDB: writeDB, ReadDB: readDB})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	a.Router(t.Context()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/projections/example_events/schema", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "struct<id: long not null, name: string, active: boolean not null>")
}

func TestNew_Maintenance(t *testing.T) {
	writeDB, readDB := internaldb.OpenTestSQLite(t)

	a, err := New(context.Background(), Deps{Cfg: testConfig(), WriteDB: writeDB, ReadDB: readDB})
	require.NoError(t, err)
	assert.Nil(t, a.Maintenance)

	cfg := testConfig()
	cfg.MaintenanceSchedule = "@every 1h"
	a, err = New(context.Background(), Deps{Cfg: cfg, WriteDB: writeDB, ReadDB: readDB})
	require.NoError(t, err)
	require.NotNil(t, a.Maintenance)
	require.NoError(t, a.Maintenance.RunOnce(t.Context()))
}

func TestNew_RestrictsFileSources(t *testing.T) {
	writeDB, readDB := internaldb.OpenTestSQLite(t)
	duck, err := engine.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = duck.Close() })

	cfg := testConfig()
	cfg.SourceRoots = []string{t.TempDir()}
	a, err := New(context.Background(), Deps{Cfg: cfg, DuckDB: duck, WriteDB: writeDB, ReadDB: readDB})
	require.NoError(t, err)

	_, err = a.Projections.Infer(context.Background(), engine.Source{Path: "/etc/passwd", Format: "csv"})
	var validation *domain.ValidationError
	require.ErrorAs(t, err, &validation)

	cfg.SourceRoots = []string{"/does/not/exist"}
	_, err = New(context.Background(), Deps{Cfg: cfg, DuckDB: duck, WriteDB: writeDB, ReadDB: readDB})
	require.ErrorContains(t, err, "source roots")
}
