package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"

	"github.com/strefethen/rdp-go/internal/apperrors"
	"github.com/strefethen/rdp-go/internal/db"
)

// DBPair interface for dependency injection (matches db.DBPair).
type DBPair interface {
	Reader() *sqlx.DB
	Writer() *sqlx.DB
}

// Store is the data access layer for value types, devices, rooms, room
// groups and measurement values.
//
// Every write operation runs in one transaction on the writer pool and either
// commits completely or leaves no trace. Constraint violations are returned as
// apperrors.ErrIntegrity, failed lookups by id or name as apperrors.ErrNotFound.
// Store adds no locking of its own and is safe for concurrent use.
type Store struct {
	reader *sqlx.DB // For SELECT queries
	writer *sqlx.DB // For INSERT/UPDATE/DELETE
	logger zerolog.Logger
}

// New creates a Store on top of an opened database.
func New(dbPair DBPair, logger zerolog.Logger) *Store {
	return &Store{
		reader: dbPair.Reader(),
		writer: dbPair.Writer(),
		logger: logger.With().Str("component", "store").Logger(),
	}
}

// withTx runs fn in a write transaction. The transaction is rolled back when
// fn or the commit fails.
func (s *Store) withTx(ctx context.Context, resource string, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := s.writer.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return s.classify(resource, err)
	}
	if err = tx.Commit(); err != nil {
		return s.classify(resource, fmt.Errorf("commit: %w", err))
	}
	return nil
}

// withReadTx runs fn in a transaction on the reader pool so multi-query reads
// see one snapshot.
func (s *Store) withReadTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.reader.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin read transaction: %w", err)
	}
	defer tx.Rollback() // Read only; nothing to commit

	return fn(tx)
}

func (s *Store) classify(resource string, err error) error {
	if db.IsConstraintError(err) {
		s.logger.Error().Err(err).Str("resource", resource).Msg("integrity")
		return apperrors.NewIntegrityError(resource, err)
	}
	return err
}

// getOne scans exactly one row into dest or returns a NotFound error for key.
func (s *Store) getOne(ctx context.Context, q sqlx.QueryerContext, dest any, resource string, key any, query string, args ...any) error {
	err := sqlx.GetContext(ctx, q, dest, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		s.logger.Error().Str("resource", resource).Interface("key", key).Msg("does not exist")
		return apperrors.NewNotFoundResource(resource, key)
	}
	if err != nil {
		return fmt.Errorf("get %s %v: %w", resource, key, err)
	}
	return nil
}

func insertedID(result sql.Result) (int64, error) {
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}
