package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/lutefd/meetup-engine/internal/config"
	"github.com/lutefd/meetup-engine/internal/domain/badges"
	"github.com/lutefd/meetup-engine/internal/domain/stats"
	"github.com/lutefd/meetup-engine/internal/events"
	"github.com/lutefd/meetup-engine/internal/logging"
	"github.com/lutefd/meetup-engine/internal/projections"
	"github.com/lutefd/meetup-engine/internal/session"
	"github.com/lutefd/meetup-engine/internal/storage/postgres"
	"github.com/lutefd/meetup-engine/internal/storage/sqlite"
)

// backend is what both storage implementations provide.
type backend interface {
	session.Store
	session.RecordSink
	projections.LogSource
	DeleteDate(ctx context.Context, date string) (int64, error)
}

func openBackend(ctx context.Context, cfg config.Config) (backend, func(), error) {
	switch cfg.Store {
	case config.StorePostgres:
		store, err := postgres.NewStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		return store, store.Close, nil
	default:
		store, err := sqlite.NewStore(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite: %w", err)
		}
		return store, func() { _ = store.Close() }, nil
	}
}

type app struct {
	cfg     config.Config
	logger  *zap.Logger
	store   backend
	session *session.Service
	season  *projections.Service
	in      io.Reader
	out     io.Writer
}

func newApp(cfg config.Config, logger *zap.Logger, store backend, in io.Reader, out io.Writer) *app {
	harmony, errs := cfg.Harmony()
	for _, err := range errs {
		logger.Warn("skipping harmony token", zap.Error(err))
	}

	bus := events.NewBus()
	season := projections.NewService(store, bus, logger, badges.Engine{PlaymakerCutoff: cfg.PlaymakerCutoff})
	season.Subscribe(bus)

	svc := session.NewService(store, session.Options{
		MaxAttendees: cfg.MaxAttendees,
		SeedWindow:   cfg.SeedWindow,
		Harmony:      harmony,
		Records:      store,
		Bus:          bus,
		Logger:       logger,
	})
	return &app{cfg: cfg, logger: logger, store: store, session: svc, season: season, in: in, out: out}
}

func main() {
	configPath := flag.String("config", os.Getenv("MEETUP_CONFIG"), "path to a YAML config file")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: meetup [-config file] <command> [args]\n\n%s", usage)
	}
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(2)
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(2)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openBackend(ctx, cfg)
	if err != nil {
		logger.Fatal("open store", zap.String("store", cfg.Store), zap.Error(err))
	}
	defer closeStore()

	a := newApp(cfg, logger, store, os.Stdin, os.Stdout)
	if err := a.session.Load(ctx); err != nil {
		logger.Error("load session", zap.Error(err))
		os.Exit(1)
	}
	if err := a.run(ctx, flag.Args()); err != nil {
		if errors.Is(err, errUsage) {
			flag.Usage()
			os.Exit(2)
		}
		logger.Error("command failed", zap.Strings("args", flag.Args()), zap.Error(err))
		os.Exit(1)
	}
}

// seasonSort resolves the table order from flags.
func seasonSort(key, dir string) (stats.SortKey, stats.Direction, error) {
	k, err := stats.ParseSortKey(key)
	if err != nil {
		return k, "", err
	}
	switch stats.Direction(dir) {
	case stats.Asc, stats.Desc:
		return k, stats.Direction(dir), nil
	case "":
		return k, stats.DefaultDirection(k), nil
	default:
		return k, "", fmt.Errorf("unknown direction %q", dir)
	}
}
