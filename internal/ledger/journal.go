// internal/ledger/journal.go
package ledger

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"meal-ledger/internal/models"
)

// Journal is an append-only SQLite log of meal entries. It mirrors every
// Append so the in-memory ledger can be rebuilt by replay on startup. The
// ledger itself never reads from it.
type Journal struct {
	db *sql.DB
}

func OpenJournal(dbPath string) (*Journal, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	j := &Journal{db: db}
	if err := j.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return j, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS meal_entries (
        seq INTEGER PRIMARY KEY AUTOINCREMENT,
        entry_id TEXT NOT NULL UNIQUE,
        day TEXT NOT NULL,
        slot TEXT NOT NULL,
        source_text TEXT NOT NULL,
        items TEXT NOT NULL,
        logged_at DATETIME NOT NULL,
        source TEXT NOT NULL
    );

    CREATE INDEX IF NOT EXISTS idx_meal_entries_day ON meal_entries(day);
    `

	if _, err := j.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Append writes one entry for (date, slot). Existing rows are never updated.
func (j *Journal) Append(date string, slot models.MealSlot, entry models.MealEntry) error {
	itemsJSON, err := json.Marshal(entry.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal items: %w", err)
	}

	query := `
        INSERT INTO meal_entries (entry_id, day, slot, source_text, items, logged_at, source)
        VALUES (?, ?, ?, ?, ?, ?, ?)
    `
	_, err = j.db.Exec(query,
		entry.ID, date, string(slot), entry.Text, string(itemsJSON),
		entry.LoggedAt.Format(time.RFC3339), entry.Source)
	if err != nil {
		return fmt.Errorf("failed to insert entry: %w", err)
	}

	return nil
}

// Replay streams every journaled entry to fn in append order. Used once at
// startup to rebuild the in-memory ledger.
func (j *Journal) Replay(fn func(date string, slot models.MealSlot, entry models.MealEntry)) error {
	query := `
        SELECT entry_id, day, slot, source_text, items, logged_at, source
        FROM meal_entries
        ORDER BY seq
    `

	rows, err := j.db.Query(query)
	if err != nil {
		return fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var entry models.MealEntry
		var day, slotStr, itemsJSON, loggedAtStr string

		err := rows.Scan(&entry.ID, &day, &slotStr, &entry.Text, &itemsJSON, &loggedAtStr, &entry.Source)
		if err != nil {
			return fmt.Errorf("failed to scan entry: %w", err)
		}

		if err := json.Unmarshal([]byte(itemsJSON), &entry.Items); err != nil {
			return fmt.Errorf("failed to unmarshal items for entry %s: %w", entry.ID, err)
		}
		if entry.LoggedAt, err = time.Parse(time.RFC3339, loggedAtStr); err != nil {
			return fmt.Errorf("failed to parse logged_at: %w", err)
		}

		entry.Slot = models.MealSlot(slotStr)
		fn(day, entry.Slot, entry)
	}

	return rows.Err()
}
