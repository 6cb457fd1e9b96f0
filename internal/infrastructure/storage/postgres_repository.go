package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"ReviewIntake/internal/domain"
	"ReviewIntake/internal/ports"
)

// PostgresRepository writes reviews straight into Postgres.
type PostgresRepository struct {
	db    *sql.DB
	table string
}

var _ ports.ReviewRepository = (*PostgresRepository)(nil)

// OpenPostgres opens a lib/pq backed pool. Connections are established lazily.
func OpenPostgres(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return db, nil
}

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB, table string) *PostgresRepository {
	if table == "" {
		table = "reviews"
	}
	return &PostgresRepository{db: db, table: table}
}

// Insert adds one review row. There is no conflict handling: repeated submissions create new rows.
func (r *PostgresRepository) Insert(ctx context.Context, review domain.Review) error {
	if r.db == nil {
		return &domain.StorageError{Message: "database is not configured"}
	}

	query, args, err := r.insertQuery(review)
	if err != nil {
		return &domain.StorageError{Message: err.Error(), Err: err}
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return &domain.StorageError{Message: pgMessage(err), Err: err}
	}

	return nil
}

func (r *PostgresRepository) insertQuery(review domain.Review) (string, []interface{}, error) {
	query, args, err := sq.Insert(r.table).
		Columns(reviewColumns...).
		Values(toRow(review).values()...).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build insert: %w", err)
	}
	return query, args, nil
}

// pgMessage extracts the server's own message from lib/pq errors.
func pgMessage(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Message != "" {
		return pqErr.Message
	}
	return err.Error()
}
