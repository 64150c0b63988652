package main

import (
	"context"

	"linire-backend/migrations"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
)

type pgExecutor struct {
	pool *pgxpool.Pool
}

func (e *pgExecutor) ensureTable(ctx context.Context) error {
	_, err := e.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		name TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`)
	return err
}

func (e *pgExecutor) applied(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := e.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE name = $1)`, name).Scan(&exists)
	return exists, err
}

// apply runs the migration and records it in one transaction
func (e *pgExecutor) apply(ctx context.Context, m migrations.Migration) error {
	return pgx.BeginFunc(ctx, e.pool, func(tx pgx.Tx) error {
		for _, stmt := range m.Statements() {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return err
			}
		}
		_, err := tx.Exec(ctx, `INSERT INTO schema_migrations (name) VALUES ($1)`, m.Name)
		return err
	})
}

func (e *pgExecutor) close() {
	e.pool.Close()
}

type mysqlExecutor struct {
	db *sqlx.DB
}

func (e *mysqlExecutor) ensureTable(ctx context.Context) error {
	_, err := e.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		name VARCHAR(255) NOT NULL PRIMARY KEY,
		applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`)
	return err
}

func (e *mysqlExecutor) applied(ctx context.Context, name string) (bool, error) {
	var n int
	if err := e.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM schema_migrations WHERE name = ?`, name); err != nil {
		return false, err
	}
	return n > 0, nil
}

// apply runs statement by statement; MySQL DDL commits implicitly, so the
// bookkeeping row is written last.
func (e *mysqlExecutor) apply(ctx context.Context, m migrations.Migration) error {
	for _, stmt := range m.Statements() {
		if _, err := e.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	_, err := e.db.ExecContext(ctx, `INSERT INTO schema_migrations (name) VALUES (?)`, m.Name)
	return err
}

func (e *mysqlExecutor) close() {
	_ = e.db.Close()
}
