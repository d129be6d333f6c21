package db

import (
	"time"
)

// RefreshEntry is one recorded derivation run.
type RefreshEntry struct {
	ID         int64   `json:"id"`
	Timestamp  string  `json:"timestamp"`
	Source     string  `json:"source"`
	TaxPercent float64 `json:"taxPercent"`
	Count      int     `json:"count"`
	TopCPH     float64 `json:"topCoinsPerHour"`
	DurationMs int64   `json:"durationMs"`
}

// RecordRefresh stores one row per successful derivation. Implements
// engine.Recorder; failures are swallowed; bookkeeping must not break the
// serving path.
func (d *DB) RecordRefresh(source string, taxPercent float64, count int, topCPH float64, took time.Duration) {
	d.sql.Exec(`
		INSERT INTO refresh_history (timestamp, source, tax_percent, count, top_cph, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339), source, taxPercent, count, topCPH, took.Milliseconds())
}

// RefreshHistory returns the most recent entries, newest first.
func (d *DB) RefreshHistory(limit int) []RefreshEntry {
	if limit <= 0 {
		limit = 50
	}
	rows, err := d.sql.Query(`
		SELECT id, timestamp, source, tax_percent, count, top_cph, duration_ms
		FROM refresh_history ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var entries []RefreshEntry
	for rows.Next() {
		var e RefreshEntry
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Source, &e.TaxPercent, &e.Count, &e.TopCPH, &e.DurationMs); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	return entries
}

// ClearRefreshHistory removes all recorded refreshes.
func (d *DB) ClearRefreshHistory() error {
	_, err := d.sql.Exec("DELETE FROM refresh_history")
	return err
}
