package db

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaspx-assistant/internal/logger"
)

func writeMigration(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestReadMigrations_SortsAndSkipsNoise(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "002_add_index.sql", "CREATE INDEX x ON t (a);")
	writeMigration(t, dir, "001_intent_categories.sql", "CREATE TABLE t (a INT);")
	writeMigration(t, dir, "README.md", "not sql")
	writeMigration(t, dir, "notes.sql", "-- no number")

	migrations, err := readMigrations(dir)
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, 1, migrations[0].Number)
	assert.Equal(t, "intent_categories", migrations[0].Name)
	assert.Equal(t, 2, migrations[1].Number)
	assert.Equal(t, "add_index", migrations[1].Name)
}

func TestRunMigrations_AppliesPendingOnly(t *testing.T) {
	dir := t.TempDir()
	writeMigration(t, dir, "001_intent_categories.sql", "CREATE TABLE intent_categories (name TEXT);")
	writeMigration(t, dir, "002_add_index.sql", "CREATE INDEX idx ON intent_categories (name);")

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()
	database := Wrap(sqlDB, logger.NewNoOpLogger())

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS schema_migrations")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM schema_migrations")).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM schema_migrations")).
		WithArgs(2).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE INDEX idx")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schema_migrations")).
		WithArgs(2, "add_index").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, database.RunMigrations(context.Background(), dir))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations_EmptyDir(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	require.NoError(t, Wrap(sqlDB, logger.NewNoOpLogger()).RunMigrations(context.Background(), t.TempDir()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWithSSLDisabled(t *testing.T) {
	assert.Equal(t, "postgres://h/db?sslmode=disable", withSSLDisabled("postgres://h/db"))
	assert.Equal(t, "postgres://h/db?x=1&sslmode=disable", withSSLDisabled("postgres://h/db?x=1"))
}

func TestNew_RequiresDSN(t *testing.T) {
	_, err := New(context.Background(), "", logger.NewNoOpLogger())
	assert.Error(t, err)
}
