package repository

import (
	"context"
	"time"

	"contact-tracker/internal/database"
	"contact-tracker/internal/domain/contact"
)

type PostgresContactLogRepository struct {
	db database.DB
}

func NewPostgresContactLogRepository(db database.DB) *PostgresContactLogRepository {
	return &PostgresContactLogRepository{db: db}
}

func (r *PostgresContactLogRepository) Create(ctx context.Context, l contact.Log) error {
	_, err := r.db.Exec(
		ctx,
		`INSERT INTO contact_logs (id, contact_id, contacted_at, contacted_by, response, follow_up_date, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		l.ID,
		l.ContactID,
		l.ContactedAt,
		nullable(l.ContactedBy),
		string(l.Response),
		l.FollowUpDate,
		nullable(l.Notes),
	)
	if err != nil && isForeignKeyViolation(err) {
		return contact.ErrNotFound
	}
	return err
}

const logColumns = `id, contact_id, contacted_at, COALESCE(contacted_by, ''), response,
		follow_up_date, COALESCE(notes, ''), follow_up_completed, follow_up_completed_at`

func (r *PostgresContactLogRepository) GetByID(ctx context.Context, id string) (contact.Log, error) {
	l, err := scanLog(r.db.QueryRow(ctx, `SELECT `+logColumns+` FROM contact_logs WHERE id = $1`, id))
	if err != nil {
		if isNoRows(err) {
			return contact.Log{}, contact.ErrLogNotFound
		}
		return contact.Log{}, err
	}
	return l, nil
}

func scanLog(row database.Row) (contact.Log, error) {
	var l contact.Log
	var resp string
	if err := row.Scan(&l.ID, &l.ContactID, &l.ContactedAt, &l.ContactedBy, &resp,
		&l.FollowUpDate, &l.Notes, &l.FollowUpCompleted, &l.FollowUpCompletedAt); err != nil {
		return contact.Log{}, err
	}
	l.Response = contact.Response(resp)
	return l, nil
}

func (r *PostgresContactLogRepository) ListByContact(ctx context.Context, contactID string) ([]contact.Log, error) {
	rows, err := r.db.Query(ctx, `SELECT `+logColumns+`
		FROM contact_logs WHERE contact_id = $1 ORDER BY contacted_at DESC`, contactID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]contact.Log, 0)
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresContactLogRepository) Delete(ctx context.Context, id string) error {
	n, err := r.db.Exec(ctx, `DELETE FROM contact_logs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return contact.ErrLogNotFound
	}
	return nil
}

const followUpSelect = `SELECT l.id, l.contact_id, l.contacted_at, COALESCE(l.contacted_by, ''), l.response,
		l.follow_up_date, COALESCE(l.notes, ''), l.follow_up_completed, l.follow_up_completed_at,
		c.name, COALESCE(c.email, ''), COALESCE(c.phone, ''), COALESCE(c.company, ''), COALESCE(c.designation, '')
	FROM contact_logs l
	JOIN contacts c ON c.id = l.contact_id`

// PendingFollowUps returns open follow-ups due on or before asOf's date.
func (r *PostgresContactLogRepository) PendingFollowUps(ctx context.Context, asOf time.Time) ([]contact.FollowUp, error) {
	day := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)
	rows, err := r.db.Query(ctx, followUpSelect+`
		WHERE l.follow_up_date IS NOT NULL
			AND l.follow_up_date <= $1
			AND l.follow_up_completed = FALSE
		ORDER BY l.follow_up_date ASC`, day)
	if err != nil {
		return nil, err
	}
	return scanFollowUps(rows)
}

func (r *PostgresContactLogRepository) OpenFollowUps(ctx context.Context) ([]contact.FollowUp, error) {
	rows, err := r.db.Query(ctx, followUpSelect+`
		WHERE l.follow_up_date IS NOT NULL
			AND l.follow_up_completed = FALSE
		ORDER BY l.follow_up_date ASC`)
	if err != nil {
		return nil, err
	}
	return scanFollowUps(rows)
}

func (r *PostgresContactLogRepository) CompleteFollowUp(ctx context.Context, id string, at time.Time) error {
	n, err := r.db.Exec(
		ctx,
		`UPDATE contact_logs SET follow_up_completed = TRUE, follow_up_completed_at = $1 WHERE id = $2`,
		at, id,
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return contact.ErrLogNotFound
	}
	return nil
}

func scanFollowUps(rows database.Rows) ([]contact.FollowUp, error) {
	defer rows.Close()

	out := make([]contact.FollowUp, 0)
	for rows.Next() {
		var f contact.FollowUp
		var resp string
		if err := rows.Scan(
			&f.ID, &f.ContactID, &f.ContactedAt, &f.ContactedBy, &resp,
			&f.FollowUpDate, &f.Notes, &f.FollowUpCompleted, &f.FollowUpCompletedAt,
			&f.ContactName, &f.ContactEmail, &f.ContactPhone, &f.Company, &f.Designation,
		); err != nil {
			return nil, err
		}
		f.Response = contact.Response(resp)
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
