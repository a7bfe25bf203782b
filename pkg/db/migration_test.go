package db

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func tableColumns(t *testing.T, conn *sql.DB, table string) map[string]bool {
	t.Helper()
	rows, err := conn.Query("PRAGMA table_info(" + table + ")")
	if err != nil {
		t.Fatalf("pragma %s: %v", table, err)
	}
	defer rows.Close()
	cols := map[string]bool{}
	for rows.Next() {
		var cid int
		var colName, ctype string
		var notnull, pk int
		var dfltVal interface{}
		if err := rows.Scan(&cid, &colName, &ctype, &notnull, &dfltVal, &pk); err != nil {
			t.Fatalf("scan col: %v", err)
		}
		cols[colName] = true
	}
	return cols
}

func TestInitDBCreatesSchema(t *testing.T) {
	conn := setupTestDB(t)
	defer conn.Close()

	for _, table := range []string{"sources", "words", "word_sources", "runs"} {
		var name string
		if err := conn.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name); err != nil {
			t.Fatalf("%s table missing: %v", table, err)
		}
	}

	cols := tableColumns(t, conn, "word_sources")
	for _, c := range []string{"occurrence_count", "pages", "first_seen_at", "last_seen_at"} {
		if !cols[c] {
			t.Fatalf("expected column %s in word_sources, got %v", c, cols)
		}
	}
	if !tableColumns(t, conn, "words")["definition"] {
		t.Fatal("expected definition column in words")
	}
}

func TestInitDBIsIdempotent(t *testing.T) {
	conn := setupTestDB(t)
	defer conn.Close()
	if err := InitDB(conn); err != nil {
		t.Fatalf("second InitDB failed: %v", err)
	}
}

func TestOpenCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.db")
	conn, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer conn.Close()
	if _, err := CreateOrGetSource(conn, "pdf", "", "/tmp/c.pdf", 1); err != nil {
		t.Fatalf("write after Open failed: %v", err)
	}
}
