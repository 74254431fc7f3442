// Package postgres implements the store interfaces over PostgreSQL using
// the pgx stdlib driver. Scheduler state and card content are persisted as
// JSONB documents embedded in their owning rows.
package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	// Registers the pgx stdlib driver under name "pgx".
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/phrazzld/deck-service/internal/store"
)

// uniqueViolationCode is the PostgreSQL unique violation error code.
const uniqueViolationCode = "23505"

// Open opens a database handle using the pgx stdlib driver and verifies
// connectivity.
func Open(ctx context.Context, url string) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// conn resolves the executor for a call: the transaction carried by the
// context when inside a unit of work, the plain handle otherwise.
func conn(ctx context.Context, db *sql.DB) store.DBTX {
	if tx, ok := store.TxFromContext(ctx); ok {
		return tx
	}
	return db
}

// isUniqueViolation checks if the given error is a PostgreSQL unique
// constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
