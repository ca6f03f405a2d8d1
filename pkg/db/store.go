package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound is returned when a key has no value.
var ErrNotFound = errors.New("db: key not found")

// DBExecutor is an interface that allows methods to accept either *sql.DB or *sql.Tx
type DBExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Value is a stored key-value row.
type Value struct {
	Key       string
	Data      []byte
	UpdatedAt time.Time
}

func checkKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("key must be non-empty")
	}
	return nil
}

// GetValue returns the value stored under key or ErrNotFound.
func GetValue(ctx context.Context, db DBExecutor, key string) (Value, error) {
	if err := checkKey(key); err != nil {
		return Value{}, err
	}
	v := Value{Key: key}
	err := db.QueryRowContext(ctx, `SELECT value, updated_at FROM kv WHERE key = ?`, key).Scan(&v.Data, &v.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Value{}, ErrNotFound
	}
	if err != nil {
		return Value{}, fmt.Errorf("get %s: %w", key, err)
	}
	return v, nil
}

// PutValue inserts or replaces the value stored under key.
func PutValue(ctx context.Context, db DBExecutor, key string, data []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if data == nil {
		data = []byte{}
	}
	query := `INSERT INTO kv (key, value, updated_at)
			  VALUES (?, ?, ?)
			  ON CONFLICT(key)
			  DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	if _, err := db.ExecContext(ctx, query, key, data, time.Now().UTC()); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// DeleteValue removes key. Deleting a missing key is not an error.
func DeleteValue(ctx context.Context, db DBExecutor, key string) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Blob is a favorites backend storing one value under a fixed key.
type Blob struct {
	DB  DBExecutor
	Key string
}

// NewBlob returns a Blob for key.
func NewBlob(db DBExecutor, key string) *Blob {
	return &Blob{DB: db, Key: key}
}

// Load returns the stored bytes, or nil when nothing is stored yet.
func (b *Blob) Load(ctx context.Context) ([]byte, error) {
	v, err := GetValue(ctx, b.DB, b.Key)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return v.Data, nil
}

// Save replaces the stored bytes.
func (b *Blob) Save(ctx context.Context, data []byte) error {
	return PutValue(ctx, b.DB, b.Key, data)
}
