package db

import (
	"encoding/json"
	"fmt"

	"bazaar-flipper/internal/engine"
)

const prefsKey = "client_state"

// LoadFilterState restores the persisted filter/sort/tax selection.
// Missing or corrupt data falls back to defaults silently; preferences are
// never allowed to crash the engine.
func (d *DB) LoadFilterState() engine.FilterState {
	state := engine.DefaultFilterState()

	var raw string
	err := d.sql.QueryRow("SELECT value FROM preferences WHERE key = ?", prefsKey).Scan(&raw)
	if err != nil {
		return state
	}
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return engine.DefaultFilterState()
	}
	if state.Ranges == nil {
		state.Ranges = map[engine.Field]engine.Bound{}
	}
	return state
}

// SaveFilterState persists the filter/sort/tax selection.
func (d *DB) SaveFilterState(state engine.FilterState) error {
	b, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	_, err = d.sql.Exec(`
		INSERT INTO preferences (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		prefsKey, string(b))
	if err != nil {
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}
