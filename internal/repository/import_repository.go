package repository

import (
	"context"
	"fmt"
	"time"

	"contact-tracker/internal/database"
	"contact-tracker/internal/domain/contact"
	"contact-tracker/internal/domain/importing"
)

type PostgresImportRepository struct {
	db        database.DB
	batchSize int
	now       func() time.Time
}

func NewPostgresImportRepository(db database.DB, batchSize int) *PostgresImportRepository {
	if batchSize <= 0 {
		batchSize = 400
	}
	return &PostgresImportRepository{db: db, batchSize: batchSize, now: time.Now}
}

// Write stores one import. The advisory lock is held until commit, so
// reconciliation sees every contact committed by earlier imports and no
// concurrent import can insert the same email or phone in between.
func (r *PostgresImportRepository) Write(ctx context.Context, m importing.Manifest, reconcile importing.ReconcileFunc) (importing.Outcome, error) {
	var out importing.Outcome

	err := database.WithTx(ctx, r.db, func(tx database.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, contactWriteLock); err != nil {
			return fmt.Errorf("acquire import lock: %w", err)
		}

		if _, err := tx.Exec(
			ctx,
			`INSERT INTO imports (id, filename, imported_at, added_count, skipped_count, imported_by)
			 VALUES ($1, $2, $3, 0, 0, $4)`,
			m.ID, m.Filename, m.ImportedAt, nullable(m.ImportedBy),
		); err != nil {
			return fmt.Errorf("insert import manifest: %w", err)
		}

		rec, err := reconcile(ctx, txLookup{q: tx, batchSize: r.batchSize})
		if err != nil {
			return err
		}
		out.Skipped = rec.Skipped

		for _, cand := range rec.Accepted {
			c := contact.Contact{
				ID:          newID(),
				Name:        cand.Name,
				Email:       cand.Email,
				Phone:       cand.Phone,
				Company:     cand.Company,
				Designation: cand.Designation,
				AddedAt:     r.now().UTC(),
				ImportID:    m.ID,
			}
			if err := insertRow(ctx, tx, c); err != nil {
				out.RowErrors = append(out.RowErrors, importing.RowError{Row: cand.Row, Err: err})
				continue
			}
			out.Added++
		}

		if _, err := tx.Exec(
			ctx,
			`UPDATE imports SET added_count = $1, skipped_count = $2 WHERE id = $3`,
			out.Added, out.Skipped, m.ID,
		); err != nil {
			return fmt.Errorf("update import manifest: %w", err)
		}
		return nil
	})
	if err != nil {
		return importing.Outcome{}, err
	}
	return out, nil
}

// insertRow isolates one insert behind a savepoint; a failed row is rolled
// back on its own and the surrounding transaction stays usable.
func insertRow(ctx context.Context, tx database.Tx, c contact.Contact) error {
	if _, err := tx.Exec(ctx, `SAVEPOINT import_row`); err != nil {
		return err
	}
	if err := insertContact(ctx, tx, c); err != nil {
		if _, rbErr := tx.Exec(ctx, `ROLLBACK TO SAVEPOINT import_row`); rbErr != nil {
			return fmt.Errorf("%v (rollback to savepoint: %w)", err, rbErr)
		}
		return err
	}
	_, err := tx.Exec(ctx, `RELEASE SAVEPOINT import_row`)
	return err
}

type txLookup struct {
	q         database.Querier
	batchSize int
}

func (l txLookup) ExistingEmails(ctx context.Context, emails []string) ([]string, error) {
	return database.QueryStringsIn(ctx, l.q, `SELECT DISTINCT email FROM contacts WHERE email IN (%s)`, emails, l.batchSize)
}

func (l txLookup) ExistingPhones(ctx context.Context, phones []string) ([]string, error) {
	return database.QueryStringsIn(ctx, l.q, `SELECT DISTINCT phone FROM contacts WHERE phone IN (%s)`, phones, l.batchSize)
}

func (r *PostgresImportRepository) List(ctx context.Context) ([]contact.Import, error) {
	rows, err := r.db.Query(ctx, `SELECT i.id, i.filename, i.imported_at, i.added_count, i.skipped_count,
			COALESCE(i.imported_by, ''), COUNT(c.id)
		FROM imports i
		LEFT JOIN contacts c ON c.import_id = i.id
		GROUP BY i.id
		ORDER BY i.imported_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]contact.Import, 0)
	for rows.Next() {
		var im contact.Import
		if err := rows.Scan(&im.ID, &im.Filename, &im.ImportedAt, &im.AddedCount, &im.SkippedCount, &im.ImportedBy, &im.ContactCount); err != nil {
			return nil, err
		}
		out = append(out, im)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PostgresImportRepository) Get(ctx context.Context, id string) (contact.Import, error) {
	var im contact.Import
	err := r.db.QueryRow(ctx, `SELECT i.id, i.filename, i.imported_at, i.added_count, i.skipped_count,
			COALESCE(i.imported_by, ''), (SELECT COUNT(*) FROM contacts c WHERE c.import_id = i.id)
		FROM imports i WHERE i.id = $1`, id).
		Scan(&im.ID, &im.Filename, &im.ImportedAt, &im.AddedCount, &im.SkippedCount, &im.ImportedBy, &im.ContactCount)
	if err != nil {
		if isNoRows(err) {
			return contact.Import{}, contact.ErrImportNotFound
		}
		return contact.Import{}, err
	}
	return im, nil
}

func (r *PostgresImportRepository) ListContacts(ctx context.Context, importID string) ([]contact.Contact, error) {
	rows, err := r.db.Query(ctx, `SELECT `+contactColumns+` FROM contacts c WHERE c.import_id = $1 ORDER BY c.added_at ASC`, importID)
	if err != nil {
		return nil, err
	}
	return scanContacts(rows)
}

func (r *PostgresImportRepository) Delete(ctx context.Context, id string) (int64, error) {
	var deleted int64
	err := database.WithTx(ctx, r.db, func(tx database.Tx) error {
		n, err := tx.Exec(ctx, `DELETE FROM contacts WHERE import_id = $1`, id)
		if err != nil {
			return err
		}
		deleted = n

		removed, err := tx.Exec(ctx, `DELETE FROM imports WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if removed == 0 {
			return contact.ErrImportNotFound
		}
		return nil
	})
	return deleted, err
}
