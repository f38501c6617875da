package database

import (
	"testing"
)

func TestDialectSQLite(t *testing.T) {
	dialect := NewSQLiteDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "sqlite3"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("DSN", func(t *testing.T) {
		result := dialect.DSN(DialectConfig{Path: "./app.db"})
		expected := "./app.db"
		if result != expected {
			t.Errorf("DSN() = %v, want %v", result, expected)
		}
	})

	t.Run("RewriteQuery", func(t *testing.T) {
		query := "SELECT * FROM events WHERE id = ? AND name = ?"
		result := dialect.RewriteQuery(query)
		if result != query {
			t.Errorf("RewriteQuery() = %v, want unchanged", result)
		}
	})
}

func TestDialectPostgreSQL(t *testing.T) {
	dialect := NewPostgresDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "postgres"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("RewriteQuery", func(t *testing.T) {
		query := "SELECT * FROM events WHERE id = ? AND name = ?"
		result := dialect.RewriteQuery(query)
		expected := "SELECT * FROM events WHERE id = $1 AND name = $2"
		if result != expected {
			t.Errorf("RewriteQuery() = %v, want %v", result, expected)
		}
	})

	t.Run("RewriteQueryNoPlaceholders", func(t *testing.T) {
		query := "SELECT COUNT(*) FROM events"
		result := dialect.RewriteQuery(query)
		if result != query {
			t.Errorf("RewriteQuery() = %v, want unchanged", result)
		}
	})
}

func TestDialectMySQL(t *testing.T) {
	dialect := NewMySQLDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "mysql"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("RewriteQuery", func(t *testing.T) {
		query := "SELECT * FROM events WHERE id = ?"
		result := dialect.RewriteQuery(query)
		if result != query {
			t.Errorf("RewriteQuery() = %v, want unchanged", result)
		}
	})
}
