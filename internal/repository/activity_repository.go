package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"contact-tracker/internal/database"
	"contact-tracker/internal/domain/activity"
)

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

type PostgresActivityRepository struct {
	db database.DB
}

func NewPostgresActivityRepository(db database.DB) *PostgresActivityRepository {
	return &PostgresActivityRepository{db: db}
}

func (r *PostgresActivityRepository) InsertActivity(ctx context.Context, e activity.Entry) error {
	meta, err := marshalJSON(e.Metadata)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(
		ctx,
		`INSERT INTO user_activities (user_id, user_name, user_email, action_type, action_description, contact_id, contact_name, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9)`,
		e.UserID,
		e.UserName,
		e.UserEmail,
		string(e.ActionType),
		e.Description,
		nullable(e.ContactID),
		nullable(e.ContactName),
		meta,
		e.CreatedAt,
	)
	return err
}

func (r *PostgresActivityRepository) InsertAudit(ctx context.Context, a activity.Audit) error {
	oldVals, err := marshalJSON(a.OldValues)
	if err != nil {
		return err
	}
	newVals, err := marshalJSON(a.NewValues)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(
		ctx,
		`INSERT INTO audit_logs (user_id, user_name, user_email, action, entity_type, entity_id, old_values, new_values, ip_address, user_agent, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7::jsonb, $8::jsonb, $9, $10, $11)`,
		a.UserID,
		a.UserName,
		a.UserEmail,
		a.Action,
		a.EntityType,
		nullable(a.EntityID),
		oldVals,
		newVals,
		nullable(a.IPAddress),
		nullable(a.UserAgent),
		a.CreatedAt,
	)
	return err
}

func (r *PostgresActivityRepository) ListActivities(ctx context.Context, f activity.Filter) ([]activity.Entry, error) {
	var where []string
	var args []any
	if f.UserID != "" {
		args = append(args, f.UserID)
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if f.ActionType != "" {
		args = append(args, f.ActionType)
		where = append(where, fmt.Sprintf("action_type = $%d", len(args)))
	}

	q := `SELECT id, user_id, user_name, user_email, action_type, action_description,
			COALESCE(contact_id, ''), COALESCE(contact_name, ''), metadata, created_at
		FROM user_activities`
	q += whereClause(where)
	q, args = paginate(q+` ORDER BY created_at DESC`, args, f)

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]activity.Entry, 0)
	for rows.Next() {
		var e activity.Entry
		var action string
		var meta []byte
		if err := rows.Scan(&e.ID, &e.UserID, &e.UserName, &e.UserEmail, &action, &e.Description,
			&e.ContactID, &e.ContactName, &meta, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.ActionType = activity.ActionType(action)
		if e.Metadata, err = unmarshalJSON(meta); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresActivityRepository) ListAudits(ctx context.Context, f activity.Filter) ([]activity.Audit, error) {
	var where []string
	var args []any
	if f.UserID != "" {
		args = append(args, f.UserID)
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if f.EntityType != "" {
		args = append(args, f.EntityType)
		where = append(where, fmt.Sprintf("entity_type = $%d", len(args)))
	}

	q := `SELECT id, user_id, user_name, user_email, action, entity_type, COALESCE(entity_id, ''),
			old_values, new_values, COALESCE(ip_address, ''), COALESCE(user_agent, ''), created_at
		FROM audit_logs`
	q += whereClause(where)
	q, args = paginate(q+` ORDER BY created_at DESC`, args, f)

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]activity.Audit, 0)
	for rows.Next() {
		var a activity.Audit
		var oldVals, newVals []byte
		if err := rows.Scan(&a.ID, &a.UserID, &a.UserName, &a.UserEmail, &a.Action, &a.EntityType, &a.EntityID,
			&oldVals, &newVals, &a.IPAddress, &a.UserAgent, &a.CreatedAt); err != nil {
			return nil, err
		}
		if a.OldValues, err = unmarshalJSON(oldVals); err != nil {
			return nil, err
		}
		if a.NewValues, err = unmarshalJSON(newVals); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresActivityRepository) DailyCounts(ctx context.Context, userID string, since time.Time) ([]activity.DailyCount, error) {
	rows, err := r.db.Query(ctx, `SELECT to_char(date_trunc('day', created_at), 'YYYY-MM-DD') AS day, action_type, COUNT(*)
		FROM user_activities
		WHERE user_id = $1 AND created_at >= $2
		GROUP BY day, action_type
		ORDER BY day DESC, action_type ASC`, userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]activity.DailyCount, 0)
	for rows.Next() {
		var d activity.DailyCount
		if err := rows.Scan(&d.Date, &d.ActionType, &d.Count); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func whereClause(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

func paginate(q string, args []any, f activity.Filter) (string, []any) {
	limit := f.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}
	args = append(args, limit, offset)
	return q + fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args)), args
}

func marshalJSON(v map[string]any) (any, error) {
	if len(v) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func unmarshalJSON(b []byte) (map[string]any, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}
