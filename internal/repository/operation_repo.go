package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"door_controller/internal/models"

	"github.com/google/uuid"
)

type OperationSQLite struct {
	db *sql.DB
}

func NewOperationSQLite(db *sql.DB) *OperationSQLite { return &OperationSQLite{db: db} }

var _ OperationRepo = (*OperationSQLite)(nil)

// Append inserts an operation row. Empty ID or zero OccurredAt are filled in.
func (r *OperationSQLite) Append(ctx context.Context, op models.Operation) error {
	if op.ID == "" {
		op.ID = uuid.NewString()
	}
	if op.OccurredAt.IsZero() {
		op.OccurredAt = time.Now().UTC()
	} else {
		op.OccurredAt = op.OccurredAt.UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO operations (id, occurred_at, kind, user_id, user_name)
		VALUES (?, ?, ?, ?, ?)
	`,
		op.ID,
		op.OccurredAt.Format("2006-01-02 15:04:05"),
		strings.ToUpper(strings.TrimSpace(string(op.Kind))),
		op.UserID,
		op.UserName,
	)

	return err
}

// List returns operations filtered by [from, to] (inclusive) and/or kind,
// ordered ascending by time.
func (r *OperationSQLite) List(ctx context.Context, from, to time.Time, kind string) ([]models.Operation, error) {
	var (
		conds []string
		args  []any
	)

	if !from.IsZero() {
		conds = append(conds, "occurred_at >= ?")
		args = append(args, from.UTC())
	}
	if !to.IsZero() {
		conds = append(conds, "occurred_at <= ?")
		args = append(args, to.UTC())
	}
	if kind = strings.ToUpper(strings.TrimSpace(kind)); kind != "" {
		conds = append(conds, "kind = ?")
		args = append(args, kind)
	}

	q := `SELECT id, occurred_at, kind, user_id, user_name FROM operations`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY occurred_at ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Operation, 0, 32)
	for rows.Next() {
		var op models.Operation
		var kindStr string
		if err := rows.Scan(&op.ID, &op.OccurredAt, &kindStr, &op.UserID, &op.UserName); err != nil {
			return nil, err
		}
		op.Kind = models.OperationKind(kindStr)
		op.OccurredAt = op.OccurredAt.UTC()
		out = append(out, op)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
