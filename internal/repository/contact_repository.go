package repository

import (
	"context"
	"time"

	"contact-tracker/internal/database"
	"contact-tracker/internal/domain/contact"
)

const contactColumns = `c.id, c.name, COALESCE(c.email, ''), COALESCE(c.phone, ''),
	COALESCE(c.company, ''), COALESCE(c.designation, ''), c.added_at, COALESCE(c.import_id, '')`

type PostgresContactRepository struct {
	db database.DB
}

func NewPostgresContactRepository(db database.DB) *PostgresContactRepository {
	return &PostgresContactRepository{db: db}
}

func (r *PostgresContactRepository) CreateUnique(ctx context.Context, c contact.Contact) (contact.Contact, bool, error) {
	var existing contact.Contact
	created := false

	err := database.WithTx(ctx, r.db, func(tx database.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, contactWriteLock); err != nil {
			return err
		}

		row := tx.QueryRow(ctx, `SELECT `+contactColumns+` FROM contacts c
			WHERE ($1 <> '' AND c.email = $1) OR ($2 <> '' AND c.phone = $2)
			ORDER BY c.added_at ASC LIMIT 1`, c.Email, c.Phone)
		found, err := scanContact(row)
		if err == nil {
			existing = found
			return nil
		}
		if !isNoRows(err) {
			return err
		}

		if err := insertContact(ctx, tx, c); err != nil {
			return err
		}
		created = true
		return nil
	})
	if err != nil {
		return contact.Contact{}, false, err
	}
	if created {
		return c, true, nil
	}
	return existing, false, nil
}

func insertContact(ctx context.Context, q database.Querier, c contact.Contact) error {
	_, err := q.Exec(
		ctx,
		`INSERT INTO contacts (id, name, email, phone, company, designation, added_at, import_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID,
		c.Name,
		nullable(c.Email),
		nullable(c.Phone),
		nullable(c.Company),
		nullable(c.Designation),
		c.AddedAt,
		nullable(c.ImportID),
	)
	return err
}

func (r *PostgresContactRepository) GetByID(ctx context.Context, id string) (contact.Contact, error) {
	row := r.db.QueryRow(ctx, `SELECT `+contactColumns+` FROM contacts c WHERE c.id = $1`, id)
	c, err := scanContact(row)
	if err != nil {
		if isNoRows(err) {
			return contact.Contact{}, contact.ErrNotFound
		}
		return contact.Contact{}, err
	}
	return c, nil
}

func (r *PostgresContactRepository) ListWithLatestLog(ctx context.Context) ([]contact.WithLatestLog, error) {
	rows, err := r.db.Query(ctx, `SELECT `+contactColumns+`,
			l.id, l.contacted_at, l.contacted_by, l.response, l.follow_up_date, l.notes,
			l.follow_up_completed, l.follow_up_completed_at
		FROM contacts c
		LEFT JOIN LATERAL (
			SELECT id, contacted_at, contacted_by, response, follow_up_date, notes,
				follow_up_completed, follow_up_completed_at
			FROM contact_logs
			WHERE contact_id = c.id
			ORDER BY contacted_at DESC
			LIMIT 1
		) l ON TRUE
		ORDER BY c.added_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]contact.WithLatestLog, 0)
	for rows.Next() {
		var (
			c           contact.Contact
			logID       *string
			contactedAt *time.Time
			contactedBy *string
			response    *string
			followUp    *time.Time
			notes       *string
			completed   *bool
			completedAt *time.Time
		)
		if err := rows.Scan(
			&c.ID, &c.Name, &c.Email, &c.Phone, &c.Company, &c.Designation, &c.AddedAt, &c.ImportID,
			&logID, &contactedAt, &contactedBy, &response, &followUp, &notes, &completed, &completedAt,
		); err != nil {
			return nil, err
		}

		item := contact.WithLatestLog{Contact: c}
		if logID != nil {
			l := &contact.Log{
				ID:                  *logID,
				ContactID:           c.ID,
				ContactedBy:         deref(contactedBy),
				Response:            contact.Response(deref(response)),
				FollowUpDate:        followUp,
				Notes:               deref(notes),
				FollowUpCompletedAt: completedAt,
			}
			if contactedAt != nil {
				l.ContactedAt = *contactedAt
			}
			if completed != nil {
				l.FollowUpCompleted = *completed
			}
			item.LatestLog = l
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresContactRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM contacts`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// DeleteAll removes every contact and import. Logs and requirements cascade.
func (r *PostgresContactRepository) DeleteAll(ctx context.Context) (int64, error) {
	var deleted int64
	err := database.WithTx(ctx, r.db, func(tx database.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, contactWriteLock); err != nil {
			return err
		}
		n, err := tx.Exec(ctx, `DELETE FROM contacts`)
		if err != nil {
			return err
		}
		deleted = n
		_, err = tx.Exec(ctx, `DELETE FROM imports`)
		return err
	})
	return deleted, err
}

func scanContact(row database.Row) (contact.Contact, error) {
	var c contact.Contact
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Company, &c.Designation, &c.AddedAt, &c.ImportID)
	return c, err
}

func scanContacts(rows database.Rows) ([]contact.Contact, error) {
	defer rows.Close()

	out := make([]contact.Contact, 0)
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
