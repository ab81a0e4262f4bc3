// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/lavanya/expenseshare/internal/models"
	"github.com/lavanya/expenseshare/internal/storage"
	"github.com/lavanya/expenseshare/internal/storage/cache"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
//
// A read-write cache sits in front of each entity's by-id read. Only
// entity rows are cached, never resolved collections: a cached group
// carries no members and a cached profile no groups, so membership writes
// need no cache coordination. Expenses embed shallow user/group
// references, so any write to a profile or group clears the expense cache
// wholesale. The rule is invalidate-on-write; there is no other eviction.
type SQLiteStore struct {
	db *sql.DB

	profiles *cache.Cache[int64, models.UserProfile]
	groups   *cache.Cache[int64, models.Group]
	expenses *cache.Cache[int64, models.Expense]
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Open database with pure Go driver
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// Run migrations
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{
		db:       db,
		profiles: cache.New[int64, models.UserProfile](),
		groups:   cache.New[int64, models.Group](),
		expenses: cache.New[int64, models.Expense](),
	}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// placeholders returns ", ?" repeated n times.
// Used for building IN clauses with multiple placeholders.
func placeholders(n int) string {
	return strings.Repeat(", ?", n)
}

// orderClause maps a sort request onto an ORDER BY fragment using the
// given field-to-column whitelist. Unknown fields fall back to insertion
// order, matching the "unordered unless sorted" list contract.
func orderClause(sort storage.Sort, columns map[string]string) string {
	col, ok := columns[sort.Field]
	if !ok {
		return ""
	}
	if sort.Desc {
		return " ORDER BY " + col + " DESC"
	}
	return " ORDER BY " + col + " ASC"
}

// nullString maps the empty string onto SQL NULL so that optional text
// columns (including the unique email) treat "unset" uniformly.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

// refID maps an entity reference id onto a nullable foreign key. A zero
// id (unpersisted reference) counts as unset.
func refID(id int64) sql.NullInt64 {
	if id == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: id, Valid: true}
}

func intPtr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}
