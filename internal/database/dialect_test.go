package database

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialects(t *testing.T) {
	tests := []struct {
		name            string
		dialect         Dialect
		driver          string
		lastInsertID    bool
		migrationsDir   string
		rewrittenSelect string
	}{
		{
			name:            "sqlite",
			dialect:         NewSQLiteDialect(),
			driver:          "sqlite3",
			lastInsertID:    true,
			migrationsDir:   "sqlite",
			rewrittenSelect: "SELECT * FROM kids WHERE id = ? AND parent_id = ?",
		},
		{
			name:            "postgres",
			dialect:         NewPostgresDialect(),
			driver:          "postgres",
			lastInsertID:    false,
			migrationsDir:   "postgres",
			rewrittenSelect: "SELECT * FROM kids WHERE id = $1 AND parent_id = $2",
		},
		{
			name:            "mysql",
			dialect:         NewMySQLDialect(),
			driver:          "mysql",
			lastInsertID:    true,
			migrationsDir:   "mysql",
			rewrittenSelect: "SELECT * FROM kids WHERE id = ? AND parent_id = ?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.driver, tt.dialect.DriverName())
			assert.Equal(t, tt.lastInsertID, tt.dialect.SupportsLastInsertId())
			assert.Equal(t, tt.migrationsDir, tt.dialect.MigrationsSubdir())
			assert.Equal(t, tt.rewrittenSelect, tt.dialect.RewriteQuery("SELECT * FROM kids WHERE id = ? AND parent_id = ?"))
			assert.Contains(t, tt.dialect.CreateMigrationsTableQuery(), "migrations")
		})
	}
}

func TestInsertIgnoreQuery(t *testing.T) {
	tests := []struct {
		dialect Dialect
		want    string
	}{
		{NewSQLiteDialect(), "INSERT OR IGNORE INTO kid_favorites (kid_id, video_id) VALUES (?, ?)"},
		{NewPostgresDialect(), "INSERT INTO kid_favorites (kid_id, video_id) VALUES (?, ?) ON CONFLICT DO NOTHING"},
		{NewMySQLDialect(), "INSERT IGNORE INTO kid_favorites (kid_id, video_id) VALUES (?, ?)"},
	}

	for _, tt := range tests {
		t.Run(tt.dialect.DriverName(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.dialect.InsertIgnoreQuery("kid_favorites", "kid_id", "video_id"))
		})
	}
}

func TestUpsertQuery(t *testing.T) {
	keys := []string{"kid_id", "video_id"}
	cols := []string{"kid_id", "video_id", "progress_seconds", "last_watched_at"}

	tests := []struct {
		dialect Dialect
		want    string
	}{
		{
			NewSQLiteDialect(),
			"INSERT INTO watch_history (kid_id, video_id, progress_seconds, last_watched_at) VALUES (?, ?, ?, ?)" +
				" ON CONFLICT (kid_id, video_id) DO UPDATE SET progress_seconds = excluded.progress_seconds, last_watched_at = excluded.last_watched_at",
		},
		{
			NewPostgresDialect(),
			"INSERT INTO watch_history (kid_id, video_id, progress_seconds, last_watched_at) VALUES (?, ?, ?, ?)" +
				" ON CONFLICT (kid_id, video_id) DO UPDATE SET progress_seconds = excluded.progress_seconds, last_watched_at = excluded.last_watched_at",
		},
		{
			NewMySQLDialect(),
			"INSERT INTO watch_history (kid_id, video_id, progress_seconds, last_watched_at) VALUES (?, ?, ?, ?)" +
				" ON DUPLICATE KEY UPDATE progress_seconds = VALUES(progress_seconds), last_watched_at = VALUES(last_watched_at)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.dialect.DriverName(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.dialect.UpsertQuery("watch_history", keys, cols))
		})
	}
}

func TestSQLiteDSN(t *testing.T) {
	d := NewSQLiteDialect()
	assert.Equal(t, ":memory:?_foreign_keys=on&_busy_timeout=5000", d.DSN(DialectConfig{}))
	assert.Equal(t, "file:kids.db?cache=shared&_foreign_keys=on&_busy_timeout=5000", d.DSN(DialectConfig{Path: "file:kids.db?cache=shared"}))
}

func TestPostgresDSNSetsApplicationName(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "url form",
			url:  "postgres://kids:secret@db:5432/kidsvids?sslmode=disable",
			want: "postgres://kids:secret@db:5432/kidsvids?application_name=kidsvids&sslmode=disable",
		},
		{
			name: "key value form",
			url:  "host=db dbname=kidsvids sslmode=disable",
			want: "host=db dbname=kidsvids sslmode=disable application_name=kidsvids",
		},
		{
			name: "explicit name is kept",
			url:  "postgres://db/kidsvids?application_name=reports",
			want: "postgres://db/kidsvids?application_name=reports",
		},
		{
			name: "empty",
			url:  "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewPostgresDialect().DSN(DialectConfig{URL: tt.url}))
		})
	}
}

func TestMySQLDSNParsesTime(t *testing.T) {
	dsn := NewMySQLDialect().DSN(DialectConfig{URL: "user:pass@tcp(localhost:3306)/kidsvids"})
	assert.Contains(t, dsn, "parseTime=true")
}

func TestSplitStatements(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name: "comment lines are dropped",
			content: `
-- comment only
CREATE TABLE a (id INTEGER);

-- leading comment
INSERT INTO a (id) VALUES (1);
`,
			want: []string{"CREATE TABLE a (id INTEGER)", "INSERT INTO a (id) VALUES (1)"},
		},
		{
			name: "semicolon inside a comment",
			content: `-- parents own the account; kids are profiles
CREATE TABLE parents (id INTEGER);
CREATE TABLE kids (id INTEGER);`,
			want: []string{"CREATE TABLE parents (id INTEGER)", "CREATE TABLE kids (id INTEGER)"},
		},
		{
			name: "multi-line statement",
			content: `CREATE TABLE a (
    id INTEGER,
    -- inline note; ignored
    name TEXT
);`,
			want: []string{"CREATE TABLE a (\n    id INTEGER,\n    name TEXT\n)"},
		},
		{
			name:    "only comments",
			content: "-- nothing; here\n\n",
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitStatements(tt.content))
		})
	}
}

func TestInitialSchemaSplitsIntoCreateStatements(t *testing.T) {
	for _, dialect := range []string{"sqlite", "postgres", "mysql"} {
		t.Run(dialect, func(t *testing.T) {
			content, err := migrationFiles.ReadFile("migrations/" + dialect + "/001_initial_schema.sql")
			require.NoError(t, err)

			stmts := splitStatements(string(content))
			require.NotEmpty(t, stmts)
			for _, stmt := range stmts {
				upper := strings.ToUpper(stmt)
				assert.True(t, strings.HasPrefix(upper, "CREATE "),
					"unexpected statement start: %q", stmt)
			}
		})
	}
}
