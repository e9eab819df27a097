package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/spec-kit/tutorial-service/internal/config"
	"github.com/spec-kit/tutorial-service/internal/dbx"
)

// sqliteBusyTimeout is how long a SQLite connection waits for a competing
// writer to release the database lock.
const sqliteBusyTimeout = 5 * time.Second

// Database wraps a database/sql handle for either SQLite or Postgres.
type Database struct {
	DB      *sql.DB
	Dialect dbx.Dialect
	pool    *pgxpool.Pool
}

// DialectFor picks the backend from the DSN scheme.
func DialectFor(dsn string) dbx.Dialect {
	lower := strings.ToLower(dsn)
	if strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return dbx.DialectPostgres
	}
	return dbx.DialectSQLite
}

// Open establishes a connection pool. Postgres DSNs go through pgxpool and are
// exposed as *sql.DB; everything else is handed to the SQLite driver.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*Database, error) {
	if cfg.DSN == "" {
		return nil, errors.New("database DSN is empty")
	}

	dialect := DialectFor(cfg.DSN)
	if dialect == dbx.DialectPostgres {
		return openPostgres(ctx, cfg, logger)
	}

	dsn, err := sqliteDSN(cfg.DSN)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(int(cfg.MaxConns))
	}
	if cfg.MinConns > 0 {
		db.SetMaxIdleConns(int(cfg.MinConns))
	}
	if cfg.ConnMaxIdleSec > 0 {
		db.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleSec) * time.Second)
	}
	if cfg.ConnMaxLifeSec > 0 {
		db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifeSec) * time.Second)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info("opened sqlite database")
	return &Database{DB: db, Dialect: dialect}, nil
}

// sqliteDSN adds a lock wait and immediate write transactions unless the DSN
// sets them already. Without these, concurrent writers fail with SQLITE_BUSY.
func sqliteDSN(dsn string) (string, error) {
	base, rawQuery, _ := strings.Cut(dsn, "?")
	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		return "", fmt.Errorf("parse sqlite dsn: %w", err)
	}

	hasBusyTimeout := false
	for _, pragma := range query["_pragma"] {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(pragma)), "busy_timeout") {
			hasBusyTimeout = true
		}
	}
	if !hasBusyTimeout {
		query.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", sqliteBusyTimeout.Milliseconds()))
	}
	if query.Get("_txlock") == "" {
		query.Set("_txlock", "immediate")
	}
	return base + "?" + query.Encode(), nil
}

func openPostgres(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*Database, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, err
	}

	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.ConnMaxIdleSec > 0 {
		poolCfg.MaxConnIdleTime = time.Duration(cfg.ConnMaxIdleSec) * time.Second
	}
	if cfg.ConnMaxLifeSec > 0 {
		poolCfg.MaxConnLifetime = time.Duration(cfg.ConnMaxLifeSec) * time.Second
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	logger.Info("connected to postgres")
	return &Database{DB: stdlib.OpenDBFromPool(pool), Dialect: dbx.DialectPostgres, pool: pool}, nil
}

// Close releases pool resources.
func (d *Database) Close() error {
	if d == nil || d.DB == nil {
		return nil
	}
	err := d.DB.Close()
	if d.pool != nil {
		d.pool.Close()
	}
	return err
}

// Ping verifies connectivity.
func (d *Database) Ping(ctx context.Context) error {
	if d == nil || d.DB == nil {
		return errors.New("database not configured")
	}
	return d.DB.PingContext(ctx)
}
