package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/projetocarbone/roma-backend/internal/model"
)

// ActivityRepo appends to and pages through the 'activities' table. Rows
// are never updated or deleted here.
type ActivityRepo struct{ DB *sql.DB }

func NewActivityRepo(db *sql.DB) *ActivityRepo { return &ActivityRepo{DB: db} }

func (r *ActivityRepo) Append(ctx context.Context, a *model.Activity) error {
	if !a.Action.Valid() {
		return fmt.Errorf("unknown activity action %q", a.Action)
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO activities (user_id, action, description, ip_address, user_agent) VALUES (?,?,?,?,?)",
		a.UserID, string(a.Action), a.Description, a.IPAddress, a.UserAgent)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	return nil
}

// ListByUser returns one page of the user's audit trail, newest first,
// plus the total row count.
func (r *ActivityRepo) ListByUser(ctx context.Context, userID uint64, offset, limit int) ([]model.Activity, int, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id, user_id, action, description, ip_address, user_agent, created_at FROM activities WHERE user_id=? ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?",
		userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.Activity, 0, limit)
	for rows.Next() {
		var a model.Activity
		var action string
		if err := rows.Scan(&a.ID, &a.UserID, &action, &a.Description, &a.IPAddress, &a.UserAgent, &a.CreatedAt); err != nil {
			return nil, 0, err
		}
		a.Action = model.Action(action)
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int
	if err := r.DB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM activities WHERE user_id=?", userID).Scan(&total); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
