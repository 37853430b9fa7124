package main

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// The audit database is a best-effort trail of what the pipeline decided
// and what happened to each record. The authoritative state lives in the
// store snapshots, so writes here never block a lifecycle operation.

func InitAuditDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS receipt_events (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		transaction_id TEXT NOT NULL DEFAULT '',
		owner_id       TEXT NOT NULL DEFAULT '',
		event          TEXT NOT NULL,
		detail         TEXT DEFAULT '',
		created_at     DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_receipt_events_tx ON receipt_events(transaction_id);
	CREATE INDEX IF NOT EXISTS idx_receipt_events_created ON receipt_events(created_at);

	CREATE TABLE IF NOT EXISTS classification_history (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		transaction_id TEXT NOT NULL,
		category       TEXT NOT NULL,
		strategy       TEXT NOT NULL,
		amount         TEXT DEFAULT '',
		last_four      TEXT DEFAULT '',
		installments   INTEGER DEFAULT 1,
		classified_at  DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_ch_tx ON classification_history(transaction_id);
	CREATE INDEX IF NOT EXISTS idx_ch_date ON classification_history(classified_at);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, err
	}
	return db, nil
}

func InsertReceiptEvent(db *sql.DB, txID, ownerID, event, detail string) error {
	_, err := db.Exec(
		`INSERT INTO receipt_events (transaction_id, owner_id, event, detail) VALUES (?, ?, ?, ?)`,
		txID, ownerID, event, detail,
	)
	return err
}

func InsertClassificationHistory(db *sql.DB, txID string, a Analysis) error {
	_, err := db.Exec(
		`INSERT INTO classification_history (transaction_id, category, strategy, amount, last_four, installments)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		txID, a.Category, a.Strategy, a.Amount, a.LastFourDigits, a.Installments,
	)
	return err
}

type ReceiptEvent struct {
	ID            int64     `json:"id"`
	TransactionID string    `json:"transaction_id"`
	OwnerID       string    `json:"owner_id"`
	Event         string    `json:"event"`
	Detail        string    `json:"detail"`
	CreatedAt     time.Time `json:"created_at"`
}

func GetEventsByTransaction(db *sql.DB, txID string) ([]ReceiptEvent, error) {
	rows, err := db.Query(
		`SELECT id, transaction_id, owner_id, event, detail, created_at
		 FROM receipt_events WHERE transaction_id = ? ORDER BY id`,
		txID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ReceiptEvent
	for rows.Next() {
		var e ReceiptEvent
		if err := rows.Scan(&e.ID, &e.TransactionID, &e.OwnerID, &e.Event, &e.Detail, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetClassificationCounts returns how often each category was assigned
// since the given time, by strategy.
func GetClassificationCounts(db *sql.DB, since time.Time) (map[string]int, error) {
	rows, err := db.Query(
		`SELECT category || '/' || strategy, COUNT(*)
		 FROM classification_history WHERE classified_at >= ?
		 GROUP BY category, strategy`,
		since,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, err
		}
		counts[key] = n
	}
	return counts, rows.Err()
}
