package main

import (
	"context"
	"fmt"
	"os"

	"linire-backend/config"
	"linire-backend/migrations"
	"linire-backend/pkg/database"
	"linire-backend/pkg/logger"
)

// executor is the little the runner needs from either driver
type executor interface {
	ensureTable(ctx context.Context) error
	applied(ctx context.Context, name string) (bool, error)
	apply(ctx context.Context, m migrations.Migration) error
	close()
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.IsProduction())

	if len(os.Args) > 1 {
		cfg.DBDriver = os.Args[1]
	}

	ctx := context.Background()
	if err := run(ctx, cfg); err != nil {
		logger.Log.Error("Migration failed", "driver", cfg.DBDriver, "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	list, err := migrations.For(cfg.DBDriver)
	if err != nil {
		return err
	}

	exec, err := open(ctx, cfg)
	if err != nil {
		return err
	}
	defer exec.close()

	if err := exec.ensureTable(ctx); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	count := 0
	for _, m := range list {
		done, err := exec.applied(ctx, m.Name)
		if err != nil {
			return fmt.Errorf("check %s: %w", m.Name, err)
		}
		if done {
			continue
		}
		if err := exec.apply(ctx, m); err != nil {
			return fmt.Errorf("apply %s: %w", m.Name, err)
		}
		count++
		logger.Log.Info("Migration applied", "migration", m.Name)
	}

	if count == 0 {
		logger.Log.Info("All migrations already applied")
	} else {
		logger.Log.Info("Migrations completed", "count", count)
	}
	return nil
}

func open(ctx context.Context, cfg *config.Config) (executor, error) {
	switch cfg.DBDriver {
	case "postgres":
		pool, err := database.NewPostgresConnection(ctx, cfg.DBUrl)
		if err != nil {
			return nil, err
		}
		return &pgExecutor{pool: pool}, nil
	case "mysql":
		db, err := database.NewMySQLConnection(ctx, cfg.MySQLDSN, database.DefaultMySQLOpts())
		if err != nil {
			return nil, err
		}
		return &mysqlExecutor{db: db}, nil
	}
	return nil, fmt.Errorf("driver %q has no schema to migrate", cfg.DBDriver)
}
