package repository

import (
	"context"

	"contact-tracker/internal/database"
	"contact-tracker/internal/domain/contact"
)

type PostgresRequirementRepository struct {
	db database.DB
}

func NewPostgresRequirementRepository(db database.DB) *PostgresRequirementRepository {
	return &PostgresRequirementRepository{db: db}
}

func (r *PostgresRequirementRepository) Create(ctx context.Context, req contact.Requirement) error {
	_, err := r.db.Exec(
		ctx,
		`INSERT INTO requirements (id, contact_id, role, experience, skills, openings, description, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		req.ID,
		req.ContactID,
		req.Role,
		nullable(req.Experience),
		nullable(req.Skills),
		req.Openings,
		nullable(req.Description),
		req.CreatedAt,
	)
	if err != nil && isForeignKeyViolation(err) {
		return contact.ErrNotFound
	}
	return err
}

func (r *PostgresRequirementRepository) List(ctx context.Context) ([]contact.RequirementView, error) {
	rows, err := r.db.Query(ctx, `SELECT r.id, r.contact_id, r.role, COALESCE(r.experience, ''), COALESCE(r.skills, ''),
			r.openings, COALESCE(r.description, ''), r.created_at,
			c.name, COALESCE(c.email, ''), COALESCE(c.phone, ''), COALESCE(c.company, ''), COALESCE(c.designation, '')
		FROM requirements r
		JOIN contacts c ON c.id = r.contact_id
		ORDER BY r.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]contact.RequirementView, 0)
	for rows.Next() {
		var v contact.RequirementView
		if err := rows.Scan(
			&v.ID, &v.ContactID, &v.Role, &v.Experience, &v.Skills,
			&v.Openings, &v.Description, &v.CreatedAt,
			&v.ContactName, &v.ContactEmail, &v.ContactPhone, &v.ContactCompany, &v.ContactDesignation,
		); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresRequirementRepository) Delete(ctx context.Context, id string) error {
	n, err := r.db.Exec(ctx, `DELETE FROM requirements WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return contact.ErrRequirementNotFound
	}
	return nil
}

func (r *PostgresRequirementRepository) DeleteAll(ctx context.Context) (int64, error) {
	return r.db.Exec(ctx, `DELETE FROM requirements`)
}
