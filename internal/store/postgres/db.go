// Package postgres stores session snapshots and finished reports in
// PostgreSQL. Schema changes are embedded goose migrations.
package postgres

import (
	"context"
	"embed"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
)

//go:embed migrations/*.sql
var migrations embed.FS

const migrationsDir = "migrations"

// DB wraps a connection pool.
type DB struct {
	Pool *pgxpool.Pool
	log  zerolog.Logger
}

// Connect opens a pool for url and checks it with a ping.
func Connect(ctx context.Context, url string, log zerolog.Logger) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 10
	cfg.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &DB{Pool: pool, log: log}, nil
}

// Close releases the pool.
func (db *DB) Close() { db.Pool.Close() }

// Migrate runs a goose command ("up", "down", "status", "version") against
// the embedded migrations.
func (db *DB) Migrate(ctx context.Context, command string) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{db.log})
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	sqlDB := stdlib.OpenDBFromPool(db.Pool)
	defer func() { _ = sqlDB.Close() }()

	var err error
	switch command {
	case "up":
		err = goose.UpContext(ctx, sqlDB, migrationsDir)
	case "down":
		err = goose.DownContext(ctx, sqlDB, migrationsDir)
	case "status":
		err = goose.StatusContext(ctx, sqlDB, migrationsDir)
	case "version":
		var v int64
		v, err = goose.GetDBVersionContext(ctx, sqlDB)
		if err == nil {
			db.log.Info().Int64("version", v).Msg("schema version")
		}
	default:
		return fmt.Errorf("unknown migrate command %q (use up, down, status or version)", command)
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", command, err)
	}
	return nil
}

type gooseLogger struct {
	log zerolog.Logger
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	l.log.Error().Msgf(format, v...)
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.log.Info().Msgf(format, v...)
}
