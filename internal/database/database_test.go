package database

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func TestOpenMigratesOnce(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "site.db")
	logger := zerolog.New(io.Discard)

	db, err := Open(ctx, path, logger)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.ExecContext(ctx, `INSERT INTO blobs (key, value) VALUES (?, ?)`, "k", []byte("v")); err != nil {
		t.Fatal(err)
	}
	db.Close()

	// reopening must not re-run the create migration or lose rows
	db, err = Open(ctx, path, logger)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	var value []byte
	if err := db.QueryRowContext(ctx, `SELECT value FROM blobs WHERE key = ?`, "k").Scan(&value); err != nil {
		t.Fatal(err)
	}
	if string(value) != "v" {
		t.Errorf("expected v, got %q", value)
	}

	var mode string
	if err := db.QueryRowContext(ctx, `PRAGMA journal_mode`).Scan(&mode); err != nil {
		t.Fatal(err)
	}
	if mode != "wal" {
		t.Errorf("expected wal journal, got %q", mode)
	}
}
