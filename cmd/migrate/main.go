package main

import (
	"context"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/lutefd/meetup-engine/internal/config"
	"github.com/lutefd/meetup-engine/internal/logging"
)

func main() {
	configPath := flag.String("config", os.Getenv("MEETUP_CONFIG"), "path to a YAML config file")
	dir := flag.String("dir", "migrations", "directory holding *.up.sql files")
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

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	files, err := listUpMigrations(*dir)
	if err != nil {
		logger.Fatal("list migrations", zap.String("dir", *dir), zap.Error(err))
	}

	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			logger.Fatal("read migration", zap.String("file", file), zap.Error(err))
		}
		if _, err := pool.Exec(ctx, string(content)); err != nil {
			logger.Fatal("apply migration", zap.String("file", file), zap.Error(err))
		}
		logger.Info("applied migration", zap.String("file", file))
	}
}

func listUpMigrations(root string) ([]string, error) {
	files := make([]string, 0)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(path, ".up.sql") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
