package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"contact-tracker/internal/config"
	"contact-tracker/internal/database"
	pgpool "contact-tracker/internal/database/postgres"
)

// PostgresDB adapts a database/sql handle to database.DB. It backs the seed
// command and any caller that already owns a *sql.DB.
type PostgresDB struct {
	db *sql.DB
}

func Connect(cfg config.DatabaseConfig) (*PostgresDB, error) {
	db, err := sql.Open("pgx", pgpool.DSN(cfg))
	if err != nil {
		return nil, err
	}

	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &PostgresDB{db: db}, nil
}

// Wrap adapts an existing handle without pinging it.
func Wrap(db *sql.DB) *PostgresDB {
	return &PostgresDB{db: db}
}

func (p *PostgresDB) Ping(ctx context.Context) error {
	if p == nil || p.db == nil {
		return database.ErrNilDB
	}
	return p.db.PingContext(ctx)
}

func (p *PostgresDB) Close() error {
	if p == nil || p.db == nil {
		return nil
	}
	return p.db.Close()
}

func (p *PostgresDB) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	if p == nil || p.db == nil {
		return 0, database.ErrNilDB
	}
	return execAffected(p.db.ExecContext(ctx, query, args...))
}

func (p *PostgresDB) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	if p == nil || p.db == nil {
		return nil, database.ErrNilDB
	}
	r, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return sqlRows{rows: r}, nil
}

func (p *PostgresDB) QueryRow(ctx context.Context, query string, args ...any) database.Row {
	if p == nil || p.db == nil {
		return errRow{err: database.ErrNilDB}
	}
	return p.db.QueryRowContext(ctx, query, args...)
}

func (p *PostgresDB) Begin(ctx context.Context) (database.Tx, error) {
	if p == nil || p.db == nil {
		return nil, database.ErrNilDB
	}
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return sqlTx{tx: tx}, nil
}

func (p *PostgresDB) SQLDB() *sql.DB {
	if p == nil {
		return nil
	}
	return p.db
}

type sqlTx struct {
	tx *sql.Tx
}

func (t sqlTx) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	return execAffected(t.tx.ExecContext(ctx, query, args...))
}

func (t sqlTx) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	r, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return sqlRows{rows: r}, nil
}

func (t sqlTx) QueryRow(ctx context.Context, query string, args ...any) database.Row {
	return t.tx.QueryRowContext(ctx, query, args...)
}

func (t sqlTx) Commit(_ context.Context) error {
	return t.tx.Commit()
}

func (t sqlTx) Rollback(_ context.Context) error {
	err := t.tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

type sqlRows struct {
	rows *sql.Rows
}

func (r sqlRows) Close() {
	_ = r.rows.Close()
}

func (r sqlRows) Next() bool {
	return r.rows.Next()
}

func (r sqlRows) Scan(dest ...any) error {
	return r.rows.Scan(dest...)
}

func (r sqlRows) Err() error {
	return r.rows.Err()
}

type errRow struct {
	err error
}

func (r errRow) Scan(_ ...any) error {
	return r.err
}

func execAffected(res sql.Result, err error) (int64, error) {
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return n, nil
}
