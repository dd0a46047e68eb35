// Package cli implements the duckproj command line: building kernel schemas
// from projection files, describing and scanning DuckDB sources, and
// managing stored projections.
package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	internaldb "duck-projection/internal/db"
	"duck-projection/internal/db/repository"
	"duck-projection/internal/engine"
	"duck-projection/internal/service/projection"
)

var (
	version = "dev"
	commit  = "none"
)

// Execute runs the CLI.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		output, _ := rootCmd.PersistentFlags().GetString("output")
		if output == "json" {
			_ = printJSON(os.Stdout, map[string]interface{}{"error": err.Error()})
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

// settings are the resolved global options shared by all commands.
type settings struct {
	output   string
	duckdb   string
	metaDB   string
	profile  string
	logLevel string
	s3       engine.S3Config
	logger   *slog.Logger
}

func newRootCmd() *cobra.Command {
	s := &settings{}

	rootCmd := &cobra.Command{
		Use:           "duckproj",
		Short:         "Column projection toolkit for DuckDB",
		Long:          "Build kernel schemas from projection files and read DuckDB sources through them.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return s.resolve(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&s.output, "output", "o", "table", "Output format (table, json)")
	rootCmd.PersistentFlags().StringVar(&s.duckdb, "duckdb", "", "DuckDB database file (default in-memory)")
	rootCmd.PersistentFlags().StringVar(&s.metaDB, "meta-db", "projections.sqlite", "SQLite file holding stored projections")
	rootCmd.PersistentFlags().StringVarP(&s.profile, "profile", "p", "", "Config profile to use")
	rootCmd.PersistentFlags().StringVar(&s.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(newBuildCmd(s))
	rootCmd.AddCommand(newArrowCmd(s))
	rootCmd.AddCommand(newDescribeCmd(s))
	rootCmd.AddCommand(newScanCmd(s))
	rootCmd.AddCommand(newProjectionsCmd(s))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

// resolve applies precedence: flag > env > profile > default.
func (s *settings) resolve(cmd *cobra.Command) error {
	cfg, err := LoadUserConfig()
	if err != nil {
		return err
	}
	p, err := cfg.ActiveProfile(s.profile)
	if err != nil {
		return err
	}

	flags := cmd.Root().PersistentFlags()
	pick := func(flag, env, profile string, dst *string) {
		if flags.Changed(flag) {
			return
		}
		if v := os.Getenv(env); v != "" {
			*dst = v
		} else if profile != "" {
			*dst = profile
		}
	}
	pick("output", "DUCKPROJ_OUTPUT", p.Output, &s.output)
	pick("duckdb", "DUCKPROJ_DUCKDB", p.DuckDB, &s.duckdb)
	pick("meta-db", "DUCKPROJ_META_DB", p.MetaDB, &s.metaDB)
	pick("log-level", "DUCKPROJ_LOG_LEVEL", "", &s.logLevel)

	s.s3 = engine.S3Config{
		KeyID:    firstNonEmpty(os.Getenv("KEY_ID"), p.S3KeyID),
		Secret:   firstNonEmpty(os.Getenv("SECRET"), p.S3Secret),
		Endpoint: firstNonEmpty(os.Getenv("ENDPOINT"), p.S3Endpoint),
		Region:   firstNonEmpty(os.Getenv("REGION"), p.S3Region),
	}

	if err := validateOutputFormat(s.output); err != nil {
		return err
	}
	s.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: parseLevel(s.logLevel)}))
	return nil
}

func parseLevel(v string) slog.Level {
	switch strings.ToLower(v) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// openDuckDB opens the configured DuckDB database and registers the S3
// secret when credentials are available.
func (s *settings) openDuckDB(ctx context.Context) (*sql.DB, error) {
	db, err := engine.Open(s.duckdb)
	if err != nil {
		return nil, err
	}
	if s.s3.Configured() {
		if err := engine.CreateS3Secret(ctx, db, "duckproj_s3", s.s3); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return db, nil
}

// service wires a projection service over the store and, when scan is set,
// a DuckDB scanner. The returned func releases everything.
func (s *settings) service(ctx context.Context, scan bool) (*projection.Service, func(), error) {
	store, err := internaldb.OpenStore(s.metaDB)
	if err != nil {
		return nil, nil, fmt.Errorf("open projection store: %w", err)
	}
	repo := repository.NewProjectionRepo(store.Write, store.Read)
	if !scan {
		return projection.NewService(repo, nil, s.logger), func() { _ = store.Close() }, nil
	}

	duck, err := s.openDuckDB(ctx)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	svc := projection.NewService(repo, engine.NewScanner(duck, s.logger), s.logger)
	return svc, func() {
		_ = duck.Close()
		_ = store.Close()
	}, nil
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			default:
				return fmt.Errorf("unsupported shell: %s", args[0])
			}
		},
	}
}
