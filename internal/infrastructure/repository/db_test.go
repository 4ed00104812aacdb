package repository

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(Config{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpenIsRepeatable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "video.db")
	for i := 0; i < 2; i++ {
		db, err := Open(Config{Driver: "sqlite", DSN: path})
		if err != nil {
			t.Fatalf("第%d次 Open() error = %v", i+1, err)
		}
		var n int
		if err := db.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM schema_version").Scan(&n); err != nil {
			t.Fatalf("read schema_version: %v", err)
		}
		if n != 1 {
			t.Errorf("schema_version rows = %d, want 1", n)
		}
		_ = db.Close()
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open(Config{Driver: "mysql"}); err == nil {
		t.Fatal("Open(mysql) should fail")
	}
}

func TestRebind(t *testing.T) {
	tests := []struct {
		name    string
		dialect Dialect
		query   string
		want    string
	}{
		{"SQLite保持问号", DialectSQLite, "SELECT * FROM t WHERE a = ? AND b = ?", "SELECT * FROM t WHERE a = ? AND b = ?"},
		{"PostgreSQL编号占位符", DialectPostgres, "SELECT * FROM t WHERE a = ? AND b = ?", "SELECT * FROM t WHERE a = $1 AND b = $2"},
		{"没有占位符", DialectPostgres, "SELECT 1", "SELECT 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &DB{dialect: tt.dialect}
			if got := d.rebind(tt.query); got != tt.want {
				t.Errorf("rebind(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}

func TestEscapeLike(t *testing.T) {
	if got := escapeLike(`100%_a\b`); got != `100\%\_a\\b` {
		t.Errorf("escapeLike() = %q", got)
	}
}
