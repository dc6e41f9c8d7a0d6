package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"constructerp/internal/cli"
	"constructerp/internal/config"
	"constructerp/internal/model"
	"constructerp/internal/service"
	"constructerp/internal/source"
	"constructerp/internal/store"

	"github.com/spf13/cobra"
)

var (
	flagQuiet     bool
	flagNoLatency bool
	flagSeedFile  string
	flagLogLevel  string
)

// fetchTimeout bounds a single command's round trips to the service.
const fetchTimeout = 30 * time.Second

var rootCmd = &cobra.Command{
	Use:   "erp",
	Short: "ConstructERP finance dashboard",
	Long:  "Construction project finance: budgets, risk, invoices, accounts, and cash flow.",
	RunE:  runDashboard,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return setupLogging()
	},
	SilenceUsage: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().BoolVar(&flagNoLatency, "no-latency", false, "Disable simulated service latency")
	rootCmd.PersistentFlags().StringVar(&flagSeedFile, "seed-file", "", "YAML dataset to load instead of the built-in demo data")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
}

// loadConfig reads the config file and applies command-line overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, err
	}
	if flagNoLatency {
		cfg.Service.SimulateLatency = false
	}
	if flagSeedFile != "" {
		cfg.General.SeedFile = flagSeedFile
	}
	if flagLogLevel != "" {
		cfg.General.LogLevel = flagLogLevel
	}
	return cfg, nil
}

func parseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if s == "" {
		return slog.LevelWarn, nil
	}
	if err := lvl.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
		return lvl, fmt.Errorf("unknown log level %q", s)
	}
	return lvl, nil
}

// setupLogging installs the default CLI logger: text on stderr.
func setupLogging() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	lvl, err := parseLevel(cfg.General.LogLevel)
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
	return nil
}

// loadDataset returns the configured dataset, falling back to the built-in one.
func loadDataset(cfg config.Config) (source.Dataset, error) {
	if cfg.General.SeedFile == "" {
		return source.Default(), nil
	}
	ds, err := source.LoadFile(cfg.General.SeedFile)
	if err != nil {
		return ds, fmt.Errorf("loading seed file: %w", err)
	}
	return ds, nil
}

// latencyFor picks the service delays for cfg.
func latencyFor(cfg config.Config) service.Latency {
	if !cfg.Service.SimulateLatency {
		return service.Latency{}
	}
	return service.DefaultLatency().Scale(cfg.Service.LatencyScale)
}

// loadService is the shared wiring used by all commands: config, dataset,
// seeded store, and the service on top. The returned func closes the store.
func loadService(ctx context.Context, logger *slog.Logger) (*service.Service, config.Config, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, cfg, nil, err
	}

	ds, err := loadDataset(cfg)
	if err != nil {
		return nil, cfg, nil, err
	}

	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Connecting to ERP service...\n")
	}

	st, err := store.OpenSeeded(ctx, ds)
	if err != nil {
		return nil, cfg, nil, fmt.Errorf("opening store: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}
	svc := service.New(st, service.Options{
		Latency: latencyFor(cfg),
		Logger:  logger,
	})
	closeFn := func() { _ = st.Close() }
	return svc, cfg, closeFn, nil
}

// requireSession is the navigation guard: it resolves the persisted login
// against the service and fails when nobody is signed in.
func requireSession(ctx context.Context, svc *service.Service) (model.User, error) {
	sess, err := config.LoadSession()
	if err != nil {
		if errors.Is(err, config.ErrNoSession) {
			return model.User{}, errors.New("not logged in, run `erp login <username>` first")
		}
		return model.User{}, err
	}

	u, err := svc.LookupUser(ctx, sess.Username)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return model.User{}, fmt.Errorf("session user %q is not a known account, run `erp login` again", sess.Username)
		}
		return model.User{}, err
	}
	return u, nil
}

// withSession loads the service, applies the guard, and hands both to fn.
func withSession(fn func(ctx context.Context, svc *service.Service, u model.User) error) error {
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	svc, _, closeFn, err := loadService(ctx, nil)
	if err != nil {
		return err
	}
	defer closeFn()

	u, err := requireSession(ctx, svc)
	if err != nil {
		return err
	}
	return fn(ctx, svc, u)
}

func printTitle(title string) {
	fmt.Println()
	fmt.Println(cli.RenderTitle(title))
	fmt.Println()
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-1]) + "…"
}
