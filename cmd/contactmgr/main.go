package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/contact-registry/internal/config"
	"github.com/example/contact-registry/internal/logging"
	"github.com/example/contact-registry/internal/persistence"
	"github.com/example/contact-registry/internal/persistence/sqlite"
	"github.com/example/contact-registry/internal/persistence/yamlfile"
	"github.com/example/contact-registry/internal/registry"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := NewRootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "contactmgr:", err)
		os.Exit(exitCode(err))
	}
}

// exitCode separates rejected requests from operational failures.
func exitCode(err error) int {
	switch registry.ErrorKind(err) {
	case "null_argument", "invalid_argument", "invalid_state":
		return 2
	}
	return 1
}

// app holds the process wide dependencies shared by every subcommand.
type app struct {
	out    io.Writer
	errOut io.Writer
	now    func() time.Time

	envFile   string
	driver    string
	sqliteDSN string
	yamlPath  string
	logLevel  string
	logFormat string
}

// NewRootCmd constructs the root CLI command; exposed for unit testing.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{out: os.Stdout, errOut: os.Stderr, now: time.Now})
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "contactmgr",
		Short:         "Manage contacts and the meetings held with them",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(a.out)
	rootCmd.SetErr(a.errOut)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.envFile, "env-file", "", "dotenv file to load instead of ./.env")
	flags.StringVar(&a.driver, "store", "", "snapshot store driver: sqlite or yaml (overrides CONTACTMGR_STORE_DRIVER)")
	flags.StringVar(&a.sqliteDSN, "sqlite-dsn", "", "SQLite data source name (overrides CONTACTMGR_SQLITE_DSN)")
	flags.StringVar(&a.yamlPath, "yaml-path", "", "YAML snapshot path (overrides CONTACTMGR_YAML_PATH)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&a.logFormat, "log-format", "", "log format: text or json")

	rootCmd.AddCommand(newContactCmd(a))
	rootCmd.AddCommand(newMeetingCmd(a))
	return rootCmd
}

// loadConfig merges environment configuration with command line overrides.
func (a *app) loadConfig() (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if a.envFile != "" {
		cfg, err = config.Load(a.envFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return config.Config{}, err
	}

	overrides := []struct {
		value  string
		target *string
	}{
		{a.driver, &cfg.StoreDriver},
		{a.sqliteDSN, &cfg.SQLiteDSN},
		{a.yamlPath, &cfg.YAMLPath},
		{a.logLevel, &cfg.LogLevel},
		{a.logFormat, &cfg.LogFormat},
	}
	for _, o := range overrides {
		if o.value != "" {
			*o.target = o.value
		}
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger, now func() time.Time) (persistence.SnapshotStore, error) {
	switch cfg.StoreDriver {
	case config.DriverYAML:
		store, err := yamlfile.Open(cfg.YAMLPath, yamlfile.WithLogger(logger), yamlfile.WithClock(now))
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.DriverSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLiteDSN, sqlite.WithLogger(logger), sqlite.WithClock(now))
		if err != nil {
			return nil, err
		}
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close()
			return nil, err
		}
		return store, nil
	}
	return nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
}

// operation runs against a registry restored from the configured store.
type operation func(ctx context.Context, reg *registry.Registry) error

// run loads the stored snapshot, executes op and, when mutates is set, saves
// the resulting registry state back to the store.
func (a *app) run(cmd *cobra.Command, mutates bool, op operation) (err error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	base, err := logging.New(a.errOut, cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		return err
	}
	ctx, _ := logging.WithRun(cmd.Context(), base.With("command", cmd.CommandPath()))
	logger := logging.FromContext(ctx)

	started := a.now()
	defer func() {
		attrs := []any{"driver", cfg.StoreDriver, "elapsed", a.now().Sub(started)}
		if err != nil {
			logger.WarnContext(ctx, "command failed", append(attrs, "error", err, "error_kind", registry.ErrorKind(err))...)
			return
		}
		logger.DebugContext(ctx, "command completed", attrs...)
	}()

	store, err := openStore(ctx, cfg, logger, a.now)
	if err != nil {
		return fmt.Errorf("open %s store: %w", cfg.StoreDriver, err)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.ErrorContext(ctx, "failed to close store", "error", cerr)
		}
	}()

	reg, err := a.loadRegistry(ctx, store, logger)
	if err != nil {
		return err
	}

	if err := op(ctx, reg); err != nil {
		return err
	}
	if !mutates {
		return nil
	}

	snapshot := toSnapshot(reg.Export()).Stamp(a.now())
	if err := store.Save(ctx, snapshot); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	logger.InfoContext(ctx, "snapshot flushed", "revision", snapshot.Revision)
	return nil
}

func (a *app) loadRegistry(ctx context.Context, store persistence.SnapshotStore, logger *slog.Logger) (*registry.Registry, error) {
	opts := []registry.Option{registry.WithClock(a.now), registry.WithLogger(logger)}

	snapshot, err := store.Load(ctx)
	if errors.Is(err, persistence.ErrNotFound) {
		logger.DebugContext(ctx, "no stored snapshot, starting empty")
		return registry.New(opts...), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	state, err := toState(snapshot)
	if err != nil {
		return nil, err
	}
	reg, err := registry.Restore(state, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: restore snapshot %s: %v", persistence.ErrCorrupt, snapshot.Revision, err)
	}
	return reg, nil
}
