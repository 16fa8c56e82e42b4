// Package postgres implements the store.Store interface backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/alfredjeanlab/listener/internal/model"
	"github.com/alfredjeanlab/listener/internal/store"
)

// PostgresStore implements store.Store backed by a PostgreSQL database.
type PostgresStore struct {
	db *sql.DB
}

// Compile-time check that PostgresStore implements store.Store.
var _ store.Store = (*PostgresStore)(nil)

// New opens a connection to the PostgreSQL database at the given URL and
// configures the connection pool. Event tables are provisioned outside the
// listener; nothing is created here.
func New(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) InsertMessage(ctx context.Context, msg *model.Message) error {
	if err := queryInsertMessage(ctx, s.db, msg); err != nil {
		return model.Database("insert into "+model.TableName(msg.OrgID), err)
	}
	return nil
}

func (s *PostgresStore) ListEvents(ctx context.Context, filter model.EventFilter) ([]*model.Event, error) {
	events, err := queryListEvents(ctx, s.db, filter)
	if err != nil {
		return nil, model.Database("select from "+model.TableName(filter.OrgID), err)
	}
	return events, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return model.Database("ping", err)
	}
	return nil
}
