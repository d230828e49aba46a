package store

import (
	"context"
	"encoding/json"
	"strings"
)

// Name cache kinds.
const (
	KindList = "list"
	KindTag  = "tag"
)

// SaveNames replaces the cached names of one kind, keeping their order.
func (d *DB) SaveNames(ctx context.Context, kind string, names []string) error {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM name_cache WHERE kind = ?`, kind); err != nil {
		return err
	}
	pos := 0
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO name_cache(kind, name, position) VALUES(?, ?, ?)`, kind, n, pos); err != nil {
			return err
		}
		pos++
	}
	return tx.Commit()
}

// LoadNames returns the cached names of one kind in saved order.
func (d *DB) LoadNames(ctx context.Context, kind string) ([]string, error) {
	rows, err := d.sql.QueryContext(ctx, `SELECT name FROM name_cache WHERE kind = ? ORDER BY position ASC`, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

const uiStateKey = "ui_state"

// UIState is the small bit of screen state restored on the next launch.
// It is best effort: a missing or unreadable value yields the zero state.
type UIState struct {
	Version int    `json:"version"`
	View    string `json:"view,omitempty"`
	Tag     string `json:"tag,omitempty"`
	SortBy  string `json:"sortBy,omitempty"`
	Order   string `json:"order,omitempty"`
	// Pane is one of: sidebar|list|detail
	Pane string `json:"pane,omitempty"`
}

func (d *DB) LoadUIState(ctx context.Context) (UIState, error) {
	v, err := d.getMeta(ctx, uiStateKey)
	if err != nil {
		return UIState{Version: 1}, err
	}
	if strings.TrimSpace(v) == "" {
		return UIState{Version: 1}, nil
	}
	var st UIState
	if err := json.Unmarshal([]byte(v), &st); err != nil {
		// Corrupted; treat as missing.
		return UIState{Version: 1}, nil
	}
	if st.Version == 0 {
		st.Version = 1
	}
	return st, nil
}

func (d *DB) SaveUIState(ctx context.Context, st UIState) error {
	if st.Version == 0 {
		st.Version = 1
	}
	b, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return d.setMeta(ctx, uiStateKey, string(b))
}
