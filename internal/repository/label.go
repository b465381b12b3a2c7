package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// labelRow is the common shape of the tags and ingredients tables.
type labelRow struct {
	ID        uint64
	OwnerID   uint64
	Name      string
	CreatedAt time.Time
}

// labelTable runs the queries shared by tags and ingredients.  table is
// always a package constant, never caller input.
type labelTable struct {
	db    *sql.DB
	table string
}

func (t labelTable) insert(ctx context.Context, ownerID uint64, name string) (labelRow, error) {
	q := fmt.Sprintf("INSERT INTO %s (user_id, name) VALUES (?, ?)", t.table)
	res, err := t.db.ExecContext(ctx, q, ownerID, name)
	if err != nil {
		return labelRow{}, fmt.Errorf("insert %s: %w", t.table, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return labelRow{}, fmt.Errorf("insert %s: %w", t.table, err)
	}
	return labelRow{ID: uint64(id), OwnerID: ownerID, Name: name, CreatedAt: time.Now().UTC()}, nil
}

func (t labelTable) listByOwner(ctx context.Context, ownerID uint64) ([]labelRow, error) {
	q := fmt.Sprintf("SELECT id, user_id, name, created_at FROM %s WHERE user_id = ? ORDER BY name DESC, id", t.table)
	return t.query(ctx, q, ownerID)
}

// listByIDsAndOwner returns the rows among ids that belong to ownerID,
// ordered by id.  Unknown and foreign ids are silently absent.
func (t labelTable) listByIDsAndOwner(ctx context.Context, ids []uint64, ownerID uint64) ([]labelRow, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	q := fmt.Sprintf("SELECT id, user_id, name, created_at FROM %s WHERE user_id = ? AND id IN (%s) ORDER BY id",
		t.table, placeholders(len(ids)))
	args := make([]any, 0, len(ids)+1)
	args = append(args, ownerID)
	for _, id := range ids {
		args = append(args, id)
	}
	return t.query(ctx, q, args...)
}

func (t labelTable) query(ctx context.Context, q string, args ...any) ([]labelRow, error) {
	rows, err := t.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", t.table, err)
	}
	defer rows.Close()

	var out []labelRow
	for rows.Next() {
		var l labelRow
		if err := rows.Scan(&l.ID, &l.OwnerID, &l.Name, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan %s: %w", t.table, err)
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query %s: %w", t.table, err)
	}
	return out, nil
}

// placeholders returns n comma separated bind markers.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
