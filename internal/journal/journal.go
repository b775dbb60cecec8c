// Package journal records completed conversions in a local SQLite
// database so batch runs can be audited later.
package journal

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

//go:embed schema.sql
var schema string

type Entry struct {
	Uuid      uuid.UUID
	Source    string
	Output    string
	Width     int
	Height    int
	Mode      string
	CreatedAt time.Time
}

type Repository struct {
	Db *sql.DB
}

// Open opens (creating if needed) the journal database at path.
func Open(path string) (*Repository, error) {
	db, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("Couldn't open database:\n%w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("Couldn't initialise database:\n%w", err)
	}

	return &Repository{Db: db}, nil
}

func (r *Repository) Close() error {
	return r.Db.Close()
}

func (r *Repository) Transact(f func(tx *sql.Tx) error) error {
	tx, err := r.Db.Begin()
	if err != nil {
		return fmt.Errorf("Couldn't begin transaction:\n%w", err)
	}

	if err := f(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Record stores one conversion, assigning its uuid and timestamp.
func (r *Repository) Record(e *Entry) error {
	e.Uuid = uuid.New()
	e.CreatedAt = time.Now()

	return r.Transact(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
      INSERT INTO conversion (uuid, source, output, width, height, mode, created_at)
      VALUES (?, ?, ?, ?, ?, ?, ?)`,
			e.Uuid.String(), e.Source, e.Output, e.Width, e.Height, e.Mode, e.CreatedAt)
		if err != nil {
			return fmt.Errorf("Failed to record conversion:\n%w", err)
		}
		return nil
	})
}

// Recent returns up to limit conversions, newest first.
func (r *Repository) Recent(limit int) ([]Entry, error) {
	rows, err := r.Db.Query(`
    SELECT uuid, source, output, width, height, mode, created_at
    FROM conversion
    ORDER BY created_at DESC, id DESC
    LIMIT ?`, limit)

	if err != nil {
		return nil, fmt.Errorf("Query execution failed:\n%w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e := Entry{}
		var uuidString string
		if err := rows.Scan(&uuidString, &e.Source, &e.Output, &e.Width, &e.Height, &e.Mode, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("Row scanning failed:\n%w", err)
		}
		e.Uuid = uuid.MustParse(uuidString)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Error iterating rows:\n%w", err)
	}

	return entries, nil
}

// Get looks up a single conversion, returning nil when absent.
func (r *Repository) Get(u uuid.UUID) (*Entry, error) {
	row := r.Db.QueryRow(`
    SELECT source, output, width, height, mode, created_at
    FROM conversion
    WHERE uuid = ?`, u.String())

	e := Entry{Uuid: u}
	if err := row.Scan(&e.Source, &e.Output, &e.Width, &e.Height, &e.Mode, &e.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("Failed to read conversion:\n%w", err)
	}

	return &e, nil
}
