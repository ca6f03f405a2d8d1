package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

// TestInitDBCreatesSchema verifies InitDB creates the kv table with the
// expected columns and can be applied twice.
func TestInitDBCreatesSchema(t *testing.T) {
	dbConn, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer dbConn.Close()
	dbConn.SetMaxOpenConns(1)

	if err := InitDB(dbConn); err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}
	if err := InitDB(dbConn); err != nil {
		t.Fatalf("InitDB is not idempotent: %v", err)
	}

	rows, err := dbConn.Query("PRAGMA table_info(kv)")
	if err != nil {
		t.Fatalf("pragmas: %v", err)
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
	for _, c := range []string{"key", "value", "updated_at"} {
		if !cols[c] {
			t.Fatalf("expected column %s in kv, got %v", c, cols)
		}
	}
}

func TestOpenFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "vocabmark.db")

	conn, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := PutValue(ctx, conn, "k", []byte("v")); err != nil {
		t.Fatalf("put: %v", err)
	}
	conn.Close()

	conn, err = Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer conn.Close()
	v, err := GetValue(ctx, conn, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(v.Data) != "v" {
		t.Fatalf("expected v, got %q", v.Data)
	}
}
