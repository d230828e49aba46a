package store

import (
	"context"
	"encoding/json"

	"taskdeck/internal/model"
)

// Lists and tags share the same (name, json) shape; namedTable keeps the SQL in one place.
type namedTable struct {
	table string
	kind  string
}

var (
	listsTable = namedTable{table: "lists", kind: "list"}
	tagsTable  = namedTable{table: "tags", kind: "tag"}
)

func (d *DB) ListLists(ctx context.Context) ([]model.List, error) {
	return listNamed[model.List](ctx, d, listsTable)
}

func (d *DB) InsertList(ctx context.Context, l model.List) error {
	return insertNamed(ctx, d, listsTable, l.Name, l.CreatedAt, l)
}

func (d *DB) DeleteList(ctx context.Context, name string) error {
	return deleteNamed(ctx, d, listsTable, name)
}

func (d *DB) ListTags(ctx context.Context) ([]model.Tag, error) {
	return listNamed[model.Tag](ctx, d, tagsTable)
}

func (d *DB) InsertTag(ctx context.Context, t model.Tag) error {
	return insertNamed(ctx, d, tagsTable, t.Name, t.CreatedAt, t)
}

func (d *DB) DeleteTag(ctx context.Context, name string) error {
	return deleteNamed(ctx, d, tagsTable, name)
}

func listNamed[T any](ctx context.Context, d *DB, nt namedTable) ([]T, error) {
	xs, err := readJSONRows[T](ctx, d.sql, `SELECT json FROM `+nt.table+` ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	if xs == nil {
		xs = []T{}
	}
	return xs, nil
}

func insertNamed(ctx context.Context, d *DB, nt namedTable, name, createdAt string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var n int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM `+nt.table+` WHERE name = ?`, name).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return ExistsError{Kind: nt.kind, Name: name}
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO `+nt.table+`(name, json, created_at_unixms) VALUES(?, ?, ?)`,
		name, string(raw), unixMs(createdAt)); err != nil {
		return err
	}
	return tx.Commit()
}

func deleteNamed(ctx context.Context, d *DB, nt namedTable, name string) error {
	res, err := d.sql.ExecContext(ctx, `DELETE FROM `+nt.table+` WHERE name = ?`, name)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return NotFoundError{Kind: nt.kind, ID: name}
	}
	return nil
}
