package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"taskdeck/internal/model"
)

// ListTasks returns every task, newest first.
func (d *DB) ListTasks(ctx context.Context) ([]model.Task, error) {
	xs, err := readJSONRows[model.Task](ctx, d.sql, `SELECT json FROM tasks ORDER BY created_at_unixms DESC, id ASC`)
	if err != nil {
		return nil, err
	}
	if xs == nil {
		xs = []model.Task{}
	}
	return xs, nil
}

func (d *DB) GetTask(ctx context.Context, id string) (model.Task, error) {
	var js string
	err := d.sql.QueryRowContext(ctx, `SELECT json FROM tasks WHERE id = ?`, id).Scan(&js)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Task{}, NotFoundError{Kind: "task", ID: id}
	}
	if err != nil {
		return model.Task{}, err
	}
	var t model.Task
	if err := json.Unmarshal([]byte(js), &t); err != nil {
		return model.Task{}, err
	}
	return t, nil
}

func (d *DB) CountTasks(ctx context.Context) (int, error) {
	var n int
	err := d.sql.QueryRowContext(ctx, `SELECT COUNT(1) FROM tasks`).Scan(&n)
	return n, err
}

func (d *DB) InsertTask(ctx context.Context, t model.Task) error {
	raw, err := json.Marshal(t)
	if err != nil {
		return err
	}
	due, list := taskColumns(t)
	_, err = d.sql.ExecContext(ctx, `INSERT INTO tasks(
		id, title, status, priority, due_date, list,
		created_at_unixms, json, updated_at_unixms
	) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Title, string(t.Status), string(t.Priority), due, list,
		unixMs(t.CreatedAt), string(raw), unixMs(t.UpdatedAt),
	)
	return err
}

// UpdateTask overwrites the stored row for t.ID.
func (d *DB) UpdateTask(ctx context.Context, t model.Task) error {
	raw, err := json.Marshal(t)
	if err != nil {
		return err
	}
	due, list := taskColumns(t)
	res, err := d.sql.ExecContext(ctx, `UPDATE tasks SET
		title = ?, status = ?, priority = ?, due_date = ?, list = ?,
		json = ?, updated_at_unixms = ?
	WHERE id = ?`,
		t.Title, string(t.Status), string(t.Priority), due, list,
		string(raw), unixMs(t.UpdatedAt), t.ID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return NotFoundError{Kind: "task", ID: t.ID}
	}
	return nil
}

func (d *DB) DeleteTask(ctx context.Context, id string) error {
	res, err := d.sql.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return NotFoundError{Kind: "task", ID: id}
	}
	return nil
}

func taskColumns(t model.Task) (due, list string) {
	if day, ok := t.Due(); ok {
		due = day.String()
	}
	return due, strings.TrimSpace(t.List.OrZero())
}

func unixMs(ts string) int64 {
	if t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(ts)); err == nil {
		return t.UTC().UnixMilli()
	}
	return time.Now().UTC().UnixMilli()
}
