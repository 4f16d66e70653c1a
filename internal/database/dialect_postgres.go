package database

import (
	"database/sql"
	"net/url"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

// applicationName tags kidsvids connections in pg_stat_activity
const applicationName = "kidsvids"

// PostgresDialect talks to PostgreSQL through lib/pq
type PostgresDialect struct{}

// NewPostgresDialect returns the PostgreSQL dialect
func NewPostgresDialect() *PostgresDialect {
	return &PostgresDialect{}
}

func (d *PostgresDialect) DriverName() string {
	return "postgres"
}

// DSN accepts both URL and key=value connection strings and adds an
// application_name unless one is already set.
func (d *PostgresDialect) DSN(config DialectConfig) string {
	dsn := strings.TrimSpace(config.URL)
	if dsn == "" || strings.Contains(dsn, "application_name") {
		return dsn
	}

	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return dsn
		}
		q := u.Query()
		q.Set("application_name", applicationName)
		u.RawQuery = q.Encode()
		return u.String()
	}
	return dsn + " application_name=" + applicationName
}

func (d *PostgresDialect) RewriteQuery(query string) string {
	return rewritePlaceholdersToNumbered(query)
}

// SupportsLastInsertId is false; ExecReturningID appends RETURNING id instead
func (d *PostgresDialect) SupportsLastInsertId() bool {
	return false
}

// ConfigureConnection sizes the pool for the live queries, which re-run on
// every change to the tables they watch.
func (d *PostgresDialect) ConfigureConnection(db *sql.DB) error {
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return nil
}

func (d *PostgresDialect) MigrationsSubdir() string {
	return "postgres"
}

func (d *PostgresDialect) CreateMigrationsTableQuery() string {
	return `
		CREATE TABLE IF NOT EXISTS migrations (
			id BIGSERIAL PRIMARY KEY,
			filename TEXT UNIQUE NOT NULL,
			executed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`
}

// InsertIgnoreQuery relies on ON CONFLICT DO NOTHING, which covers the
// composite primary keys of the overlay tables.
func (d *PostgresDialect) InsertIgnoreQuery(table string, columns ...string) string {
	return insertPrefix("INSERT", table, columns) + " ON CONFLICT DO NOTHING"
}

func (d *PostgresDialect) UpsertQuery(table string, keys []string, columns []string) string {
	return onConflictUpsert(table, keys, columns)
}
