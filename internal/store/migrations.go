package store

import (
	"context"
	"database/sql"
	"fmt"
)

func (s *Store) migrate(ctx context.Context) error {
	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		)
	`); err != nil {
		return fmt.Errorf("create schema_version: %w", err)
	}

	var version int
	err = tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	if version < 1 {
		if err := migrateV1(ctx, tx); err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
	}

	return tx.Commit()
}

func migrateV1(ctx context.Context, tx *sql.Tx) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS trial_balances (
			id         TEXT PRIMARY KEY,
			cycle_id   TEXT NOT NULL,
			name       TEXT NOT NULL,
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trial_balances_cycle ON trial_balances(cycle_id)`,

		// Decimal columns are stored as text to keep exact values.
		`CREATE TABLE IF NOT EXISTS tb_accounts (
			id               TEXT PRIMARY KEY,
			trial_balance_id TEXT NOT NULL REFERENCES trial_balances(id),
			position         INTEGER NOT NULL,
			code             TEXT NOT NULL,
			name             TEXT NOT NULL,
			classification   TEXT NOT NULL DEFAULT '',
			current_year     TEXT NOT NULL DEFAULT '0',
			prior_year       TEXT NOT NULL DEFAULT '0',
			reclassification TEXT NOT NULL DEFAULT '0',
			adjustments      TEXT NOT NULL DEFAULT '0',
			final_balance    TEXT NOT NULL DEFAULT '0',
			UNIQUE (trial_balance_id, code)
		)`,

		`CREATE TABLE IF NOT EXISTS audit_entries (
			id               TEXT PRIMARY KEY,
			trial_balance_id TEXT NOT NULL REFERENCES trial_balances(id),
			type             TEXT NOT NULL CHECK (type IN ('ADJUSTMENT','RECLASSIFICATION')),
			code             TEXT NOT NULL COLLATE NOCASE,
			description      TEXT NOT NULL DEFAULT '',
			status           TEXT NOT NULL DEFAULT 'DRAFT' CHECK (status IN ('DRAFT','POSTED')),
			created_at       TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
			updated_at       TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
			UNIQUE (trial_balance_id, type, code)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_entries_tb ON audit_entries(trial_balance_id, type)`,

		`CREATE TABLE IF NOT EXISTS entry_lines (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			entry_id   TEXT NOT NULL REFERENCES audit_entries(id) ON DELETE CASCADE,
			account_id TEXT NOT NULL REFERENCES tb_accounts(id),
			type       TEXT NOT NULL CHECK (type IN ('DEBIT','CREDIT')),
			value      TEXT NOT NULL,
			reason     TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entry_lines_entry ON entry_lines(entry_id)`,

		// Trigger: posting is one-directional
		`CREATE TRIGGER IF NOT EXISTS trg_no_unpost
		BEFORE UPDATE OF status ON audit_entries
		WHEN OLD.status = 'POSTED' AND NEW.status = 'DRAFT'
		BEGIN
			SELECT RAISE(ABORT, 'posted entries cannot return to draft');
		END`,

		// Trigger: lines of a posted entry are immutable
		`CREATE TRIGGER IF NOT EXISTS trg_immutable_lines_insert
		BEFORE INSERT ON entry_lines
		WHEN (SELECT status FROM audit_entries WHERE id = NEW.entry_id) = 'POSTED'
		BEGIN
			SELECT RAISE(ABORT, 'cannot add lines to a posted entry');
		END`,

		`CREATE TRIGGER IF NOT EXISTS trg_immutable_lines_update
		BEFORE UPDATE ON entry_lines
		WHEN (SELECT status FROM audit_entries WHERE id = OLD.entry_id) = 'POSTED'
		BEGIN
			SELECT RAISE(ABORT, 'cannot modify lines of a posted entry');
		END`,

		`CREATE TABLE IF NOT EXISTS notifications (
			id         TEXT PRIMARY KEY,
			kind       TEXT NOT NULL,
			title      TEXT NOT NULL,
			message    TEXT NOT NULL DEFAULT '',
			entry_id   TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notifications_created ON notifications(created_at)`,

		`INSERT INTO schema_version (version) VALUES (1)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}
