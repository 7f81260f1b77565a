package sqlite

import (
	"context"
	_ "embed"
	"sync"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	_ "github.com/mattn/go-sqlite3" // sqlite3 driver registration
)

const (
	// DefaultFilename is the name of the sqlite database file produced
	// by the external ingestion pipeline.
	DefaultFilename = "threatdesk.sqlite"

	// InmemPath is the path to use for opening an in-memory database.
	InmemPath = ":memory:"
)

//go:embed schema.sql
var schemaDDL string

// SqlStore is the embedded relational store holding the threat-intel
// dataset. This service only reads from it; writes come from the
// ingestion pipeline. The mutex exists because sqlite allows many
// concurrent readers but only a single writer, and schema bootstrap is
// the one write this process performs.
type SqlStore struct {
	Mu   sync.RWMutex
	DB   *sqlx.DB
	log  *zap.Logger
	path string
}

// NewSqlStore opens the database at path, which may be InmemPath.
func NewSqlStore(path string, log *zap.Logger) (*SqlStore, error) {
	s, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	log.Info("Resources opened", zap.String("path", path))

	// If using an in-memory database, don't allow more than 1 connection.
	// Each connection is given a new database and there is no
	// pooled in-memory database.
	if path == InmemPath {
		s.SetMaxOpenConns(1)
	}

	if _, err := s.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		return nil, err
	}
	if _, err := s.Exec("PRAGMA busy_timeout = 3000;"); err != nil {
		return nil, err
	}

	return &SqlStore{
		DB:   s,
		log:  log,
		path: path,
	}, nil
}

// Close the connection to the sqlite database.
func (s *SqlStore) Close() error {
	return s.DB.Close()
}

// InitSchema applies the embedded DDL. The statements are idempotent,
// so running against an already-populated ingestion database is safe.
// This is deliberately not a migration system; the schema is owned by
// the ingestion pipeline and this bootstrap only covers fresh files.
func (s *SqlStore) InitSchema(ctx context.Context) error {
	s.Mu.Lock()
	defer s.Mu.Unlock()

	if err := s.execTrans(ctx, schemaDDL); err != nil {
		return err
	}

	s.log.Debug("Schema bootstrap complete")
	return nil
}

// execTrans executes a script of SQL statements in a single transaction.
func (s *SqlStore) execTrans(ctx context.Context, stmt string) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, stmt); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

// TableNames returns the user table names in the order they appear in
// sqlite_master.
func (s *SqlStore) TableNames(ctx context.Context) ([]string, error) {
	var names []string
	err := s.DB.SelectContext(ctx, &names, `SELECT name FROM sqlite_master WHERE type='table'`)
	if err != nil {
		return nil, err
	}

	return names, nil
}
