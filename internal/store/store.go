package store

import (
	"context"
	"database/sql"
	"fmt"
	"runtime"

	"github.com/simonvc/auditledger/internal/audit"
	_ "modernc.org/sqlite"
)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// EntryFilter narrows ListEntries. A zero Kind lists every kind.
type EntryFilter struct {
	Kind   audit.Kind
	Limit  int
	Offset int
}

// Store persists trial balances, audit entries and notifications in SQLite.
// Writes go through a single connection so that checks made inside a write
// transaction cannot race with another writer.
type Store struct {
	writer *sql.DB
	reader *sql.DB
}

func Open(dbPath string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)", dbPath)

	writer, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open writer: %w", err)
	}
	writer.SetMaxOpenConns(1)

	reader, err := sql.Open("sqlite", dsn)
	if err != nil {
		writer.Close()
		return nil, fmt.Errorf("open reader: %w", err)
	}
	reader.SetMaxOpenConns(runtime.NumCPU())

	s := &Store{writer: writer, reader: reader}

	if err := s.migrate(context.Background()); err != nil {
		s.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *Store) Close() error {
	err1 := s.writer.Close()
	err2 := s.reader.Close()
	if err1 != nil {
		return err1
	}
	return err2
}
