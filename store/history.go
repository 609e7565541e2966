// Package store persiste l'historique des rapports générés dans une
// base SQLite locale, pour l'endpoint d'historique et l'audit.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS reports (
	id         TEXT PRIMARY KEY,
	status     TEXT NOT NULL,
	filename   TEXT NOT NULL DEFAULT '',
	size_bytes INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports(created_at DESC);
`

// Entry, une génération passée.
type Entry struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	Filename  string    `json:"filename"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}

// History encapsule la base SQLite.
type History struct {
	db *sql.DB
}

// OpenHistory ouvre (et initialise si besoin) la base.
func OpenHistory(path string) (*History, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init history db: %w", err)
	}
	return &History{db: db}, nil
}

// Add insère ou remplace une entrée (un job peut passer de error à
// done s'il est resoumis avec le même id, cas rare mais toléré).
func (h *History) Add(e Entry) error {
	_, err := h.db.Exec(
		`INSERT OR REPLACE INTO reports (id, status, filename, size_bytes, created_at) VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.Status, e.Filename, e.SizeBytes, e.CreatedAt.UTC(),
	)
	return err
}

// Recent retourne les n dernières entrées, plus récentes d'abord.
func (h *History) Recent(n int) ([]Entry, error) {
	if n <= 0 {
		n = 20
	}
	rows, err := h.db.Query(
		`SELECT id, status, filename, size_bytes, created_at FROM reports ORDER BY created_at DESC LIMIT ?`, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Status, &e.Filename, &e.SizeBytes, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (h *History) Close() error {
	return h.db.Close()
}
