package protolog

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteLogger writes protocol events into a queryable SQLite table,
// grounded on the teacher's cmd/mash-web/api.Store pattern (open, migrate,
// insert under a mutex). Unlike FileLogger's append-only CBOR stream, its
// Query method filters events by time range and device without replaying
// the whole file. Rows are never pruned.
type SQLiteLogger struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteLogger opens (creating if necessary) a SQLite database at path
// and ensures its schema exists. Use ":memory:" for an ephemeral logger.
func NewSQLiteLogger(path string) (*SQLiteLogger, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("protolog: open sqlite logger: %w", err)
	}

	if _, err := db.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("protolog: configure sqlite logger: %w", err)
	}

	l := &SQLiteLogger{db: db}
	if err := l.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return l, nil
}

func (l *SQLiteLogger) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		ts DATETIME NOT NULL,
		layer INTEGER NOT NULL,
		category INTEGER NOT NULL,
		device_id TEXT,
		payload TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_events_ts ON events(ts);
	CREATE INDEX IF NOT EXISTS idx_events_device_id ON events(device_id);
	`
	_, err := l.db.Exec(schema)
	return err
}

// Log inserts the event as a row. Marshal/insert errors are swallowed —
// protocol logging must never disrupt the orchestrator or transport path
// that produced the event.
func (l *SQLiteLogger) Log(event Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	_, _ = l.db.Exec(
		`INSERT INTO events (ts, layer, category, device_id, payload) VALUES (?, ?, ?, ?, ?)`,
		event.Timestamp, uint8(event.Layer), uint8(event.Category), event.DeviceID, string(payload),
	)
}

// Query returns every event recorded between start and end (inclusive of
// start, exclusive of end), most recent first. An empty deviceID matches
// every device.
func (l *SQLiteLogger) Query(start, end time.Time, deviceID string) ([]Event, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	query := `SELECT payload FROM events WHERE ts >= ? AND ts < ?`
	args := []any{start, end}
	if deviceID != "" {
		query += ` AND device_id = ?`
		args = append(args, deviceID)
	}
	query += ` ORDER BY ts DESC`

	rows, err := l.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("protolog: query sqlite logger: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var ev Event
		if err := json.Unmarshal([]byte(payload), &ev); err != nil {
			continue
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// Close closes the underlying database connection.
func (l *SQLiteLogger) Close() error {
	return l.db.Close()
}

// Compile-time interface satisfaction check.
var _ Logger = (*SQLiteLogger)(nil)
