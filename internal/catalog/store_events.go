package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// AppendEvent adds a human-readable status annotation to a record's audit
// trail. Callers treat failures as best-effort: log and continue.
func (s *Store) AppendEvent(ctx context.Context, recordID int64, note string) error {
	note = strings.TrimSpace(note)
	if note == "" {
		return errors.New("event note is required")
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO record_events (record_id, note, created_at) VALUES (?, ?, ?)`,
		recordID,
		note,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("append record event: %w", err)
	}
	return nil
}

// Events returns a record's audit trail in insertion order.
func (s *Store) Events(ctx context.Context, recordID int64) ([]Event, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, record_id, note, created_at FROM record_events WHERE record_id = ? ORDER BY id`,
		recordID,
	)
	if err != nil {
		return nil, fmt.Errorf("query record events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			event      Event
			createdRaw string
		)
		if err := rows.Scan(&event.ID, &event.RecordID, &event.Note, &createdRaw); err != nil {
			return nil, err
		}
		if created, err := parseTimeString(createdRaw); err == nil {
			event.CreatedAt = created
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
