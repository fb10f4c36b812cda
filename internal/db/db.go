package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"sort"

	"github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/vytor/vocabquiz/internal/logger"
)

//go:embed migrations
var migrationsFS embed.FS

// Dialect captures the differences between the supported SQL engines.
type Dialect struct {
	Driver      string
	Placeholder squirrel.PlaceholderFormat
	// RowLock is appended to a SELECT that must hold its rows until commit.
	// SQLite has no row locks; its single connection serializes transactions.
	RowLock       string
	migrationsDir string
	schemaTable   string
}

var (
	SQLite = Dialect{
		Driver:        "sqlite3",
		Placeholder:   squirrel.Question,
		migrationsDir: "migrations/sqlite",
		schemaTable:   `CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY, applied_at DATETIME DEFAULT CURRENT_TIMESTAMP)`,
	}
	Postgres = Dialect{
		Driver:        "pgx",
		Placeholder:   squirrel.Dollar,
		RowLock:       "FOR UPDATE",
		migrationsDir: "migrations/postgres",
		schemaTable:   `CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY, applied_at TIMESTAMPTZ DEFAULT now())`,
	}
)

// DialectFor maps a database/sql driver name to its dialect.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case SQLite.Driver:
		return SQLite, nil
	case Postgres.Driver:
		return Postgres, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Builder returns a squirrel statement builder using the dialect's placeholders.
func (d Dialect) Builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(d.Placeholder)
}

type DB struct {
	*sqlx.DB
	Dialect Dialect
	log     *logger.Logger
}

// Open connects to the database and applies pending migrations. For sqlite3
// dsn is a file path (or ":memory:"); for pgx it is a connection URL.
func Open(driver, dsn string) (*DB, error) {
	log := logger.Default().WithPrefix("db")

	dialect, err := DialectFor(driver)
	if err != nil {
		return nil, err
	}

	source := dsn
	if dialect.Driver == SQLite.Driver {
		source = fmt.Sprintf("%s?_busy_timeout=5000&_foreign_keys=on&_journal_mode=WAL&_synchronous=NORMAL", dsn)
		log.Info("opening database: %s", dsn)
	} else {
		log.Info("opening %s database", driver)
	}

	sqlDB, err := sqlx.Open(dialect.Driver, source)
	if err != nil {
		log.Error("failed to open database: %v", err)
		return nil, err
	}
	if dialect.Driver == SQLite.Driver {
		sqlDB.SetMaxOpenConns(1) // SQLite best practice for single writer
	}

	db := &DB{DB: sqlDB, Dialect: dialect, log: log}

	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		log.Error("failed to reach database: %v", err)
		_ = sqlDB.Close()
		return nil, err
	}

	log.Debug("applying migrations")
	if err := db.applyMigrations(ctx); err != nil {
		log.Error("failed to apply migrations: %v", err)
		_ = sqlDB.Close()
		return nil, err
	}

	log.Info("database ready")
	return db, nil
}

// Builder returns a squirrel builder for this database's dialect.
func (db *DB) Builder() squirrel.StatementBuilderType {
	return db.Dialect.Builder()
}

func (db *DB) applyMigrations(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, db.Dialect.schemaTable); err != nil {
		return err
	}

	entries, err := migrationsFS.ReadDir(db.Dialect.migrationsDir)
	if err != nil {
		return err
	}
	versions := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			versions = append(versions, entry.Name())
		}
	}
	sort.Strings(versions)

	for _, version := range versions {
		applied, err := db.isMigrationApplied(ctx, version)
		if err != nil {
			return err
		}
		if applied {
			db.log.Debug("migration %s already applied, skipping", version)
			continue
		}
		sqlBytes, err := migrationsFS.ReadFile(db.Dialect.migrationsDir + "/" + version)
		if err != nil {
			return err
		}
		db.log.Info("applying migration: %s", version)
		if _, err := db.ExecContext(ctx, string(sqlBytes)); err != nil {
			db.log.Error("migration %s failed: %v", version, err)
			return fmt.Errorf("apply migration %s: %w", version, err)
		}
		if _, err := db.ExecContext(ctx, db.Rebind(`INSERT INTO schema_migrations (version) VALUES (?)`), version); err != nil {
			return err
		}
		db.log.Info("migration %s applied successfully", version)
	}
	return nil
}

func (db *DB) isMigrationApplied(ctx context.Context, version string) (bool, error) {
	var v string
	err := db.QueryRowContext(ctx, db.Rebind(`SELECT version FROM schema_migrations WHERE version = ?`), version).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// Tx runs fn inside a transaction, committing when fn returns nil.
func (db *DB) Tx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	log := logger.FromContext(ctx).WithPrefix("db")
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction: %v", err)
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		log.Debug("transaction rolled back due to error: %v", err)
		return err
	}
	if err := tx.Commit(); err != nil {
		log.Error("failed to commit transaction: %v", err)
		return err
	}
	log.Debug("transaction committed")
	return nil
}
