package fetch

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// RequestLog records every network fetch in SQLite. The log keeps one entry
// per URL: refetching a URL replaces its previous entry.
type RequestLog struct {
	db *sql.DB
}

// LogEntry is one recorded fetch.
type LogEntry struct {
	EntryID    uuid.UUID `json:"entry_id"`
	URL        string    `json:"url"`
	Filename   string    `json:"filename"`
	StatusCode int       `json:"status_code"`
	FetchedAt  time.Time `json:"fetched_at"`
}

// NewRequestLog opens (creating if necessary) a request log database.
func NewRequestLog(dbPath string) (*RequestLog, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	log := &RequestLog{db: db}
	if err := log.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return log, nil
}

func (l *RequestLog) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS requests (
		entry_id TEXT PRIMARY KEY,
		url TEXT NOT NULL,
		filename TEXT NOT NULL,
		status_code INTEGER NOT NULL,
		fetched_at TEXT NOT NULL
	);

	CREATE UNIQUE INDEX IF NOT EXISTS requests_url ON requests(url);
	`

	_, err := l.db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (l *RequestLog) Close() error {
	return l.db.Close()
}

// Record logs a fetch, replacing any earlier entry for the same URL.
func (l *RequestLog) Record(url, filename string, statusCode int) error {
	query := `
		INSERT INTO requests (entry_id, url, filename, status_code, fetched_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			entry_id = excluded.entry_id,
			filename = excluded.filename,
			status_code = excluded.status_code,
			fetched_at = excluded.fetched_at
	`

	_, err := l.db.Exec(query,
		uuid.New().String(),
		url,
		filename,
		statusCode,
		time.Now().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to record request: %w", err)
	}
	return nil
}

// List returns all recorded fetches, most recent first.
func (l *RequestLog) List() ([]LogEntry, error) {
	rows, err := l.db.Query(`
		SELECT entry_id, url, filename, status_code, fetched_at
		FROM requests
		ORDER BY fetched_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	var entries []LogEntry
	for rows.Next() {
		var entry LogEntry
		var entryID, fetchedAt string

		if err := rows.Scan(&entryID, &entry.URL, &entry.Filename, &entry.StatusCode, &fetchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan request row: %w", err)
		}

		entry.EntryID, err = uuid.Parse(entryID)
		if err != nil {
			return nil, fmt.Errorf("invalid entry id %q: %w", entryID, err)
		}
		entry.FetchedAt, _ = time.Parse(time.RFC3339, fetchedAt)

		entries = append(entries, entry)
	}

	return entries, rows.Err()
}
