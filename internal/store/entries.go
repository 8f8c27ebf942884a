package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/simonvc/auditledger/internal/audit"
)

// CreateEntry persists e under the trial balance. Lines are inserted while the
// entry is a draft; a posted entry is then finalized and its effect applied to
// the trial-balance columns in the same transaction.
func (s *Store) CreateEntry(ctx context.Context, tbID string, e *audit.Entry) error {
	if err := audit.Validate(e, e.Status); err != nil {
		return err
	}
	if e.ID == "" {
		e.ID = uuid.Must(uuid.NewV7()).String()
	}
	now := time.Now().UTC()
	e.CreatedAt, e.UpdatedAt = now, now

	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := checkCodeFree(ctx, tx, tbID, e.Kind, e.Code, ""); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO audit_entries (id, trial_balance_id, type, code, description, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 'DRAFT', ?, ?)`,
		e.ID, tbID, string(e.Kind), e.Code, e.Description,
		now.Format(timeLayout), now.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert entry: %w", err)
	}

	for i, l := range e.Lines {
		var owner string
		err := tx.QueryRowContext(ctx, `SELECT trial_balance_id FROM tb_accounts WHERE id = ?`,
			strings.ToLower(l.AccountID)).Scan(&owner)
		if err == sql.ErrNoRows || (err == nil && owner != tbID) {
			return &audit.ValidationError{Line: i + 1, Field: "accountId",
				Err: fmt.Errorf("%w: %s", audit.ErrAccountNotFound, l.AccountID)}
		}
		if err != nil {
			return fmt.Errorf("check account: %w", err)
		}
		e.Lines[i].AccountID = strings.ToLower(l.AccountID)

		_, err = tx.ExecContext(ctx,
			`INSERT INTO entry_lines (entry_id, account_id, type, value, reason) VALUES (?, ?, ?, ?, ?)`,
			e.ID, e.Lines[i].AccountID, string(l.Type), l.Amount.String(), l.Details,
		)
		if err != nil {
			return fmt.Errorf("insert line %d: %w", i+1, err)
		}
	}

	if e.Status == audit.StatusPosted {
		if err := postEntry(ctx, tx, e); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// UpdateEntry changes code, description and status. Lines are never touched.
func (s *Store) UpdateEntry(ctx context.Context, tbID, id, code, description string, status audit.Status) (*audit.Entry, error) {
	if strings.TrimSpace(code) == "" {
		return nil, &audit.ValidationError{Field: "code", Err: audit.ErrMissingCode}
	}

	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	cur, err := getEntry(ctx, tx, tbID, id)
	if err != nil {
		return nil, err
	}
	if !audit.CanTransition(cur.Status, status) {
		return nil, fmt.Errorf("%w: %s to %s", audit.ErrInvalidTransition, cur.Status, status)
	}
	if err := checkCodeFree(ctx, tx, tbID, cur.Kind, code, id); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx,
		`UPDATE audit_entries SET code = ?, description = ?, updated_at = ? WHERE id = ?`,
		code, description, now.Format(timeLayout), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update entry: %w", err)
	}
	cur.Code, cur.Description, cur.UpdatedAt = code, description, now

	if cur.Status == audit.StatusDraft && status == audit.StatusPosted {
		if err := audit.Validate(cur, audit.StatusPosted); err != nil {
			return nil, err
		}
		if err := postEntry(ctx, tx, cur); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return cur, nil
}

// DeleteEntry removes an entry. A posted entry's effect on the trial balance
// is reversed first.
func (s *Store) DeleteEntry(ctx context.Context, tbID, id string) (*audit.Entry, error) {
	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	e, err := getEntry(ctx, tx, tbID, id)
	if err != nil {
		return nil, err
	}
	if e.Status == audit.StatusPosted {
		if err := applyLines(ctx, tx, e.Kind, e.Lines, -1); err != nil {
			return nil, fmt.Errorf("reverse entry: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM entry_lines WHERE entry_id = ?`, id); err != nil {
		return nil, fmt.Errorf("delete lines: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM audit_entries WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("delete entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return e, nil
}

func (s *Store) GetEntry(ctx context.Context, tbID, id string) (*audit.Entry, error) {
	return getEntry(ctx, s.reader, tbID, id)
}

func (s *Store) ListEntries(ctx context.Context, tbID string, filter EntryFilter) ([]audit.Entry, error) {
	query := `SELECT id, type, code, description, status, created_at, updated_at
		FROM audit_entries WHERE trial_balance_id = ?`
	args := []any{tbID}

	if filter.Kind != "" {
		query += ` AND type = ?`
		args = append(args, string(filter.Kind))
	}
	query += ` ORDER BY created_at, id`

	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, filter.Limit)
		if filter.Offset > 0 {
			query += fmt.Sprintf(` OFFSET %d`, filter.Offset)
		}
	}

	rows, err := s.reader.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	var entries []audit.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		entries = append(entries, *e)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range entries {
		lines, err := getLines(ctx, s.reader, entries[i].ID)
		if err != nil {
			return nil, err
		}
		entries[i].Lines = lines
	}
	return entries, nil
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

func getEntry(ctx context.Context, q querier, tbID, id string) (*audit.Entry, error) {
	row := q.QueryRowContext(ctx,
		`SELECT id, type, code, description, status, created_at, updated_at
		FROM audit_entries WHERE id = ? AND trial_balance_id = ?`, id, tbID)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, audit.ErrEntryNotFound
	}
	if err != nil {
		return nil, err
	}
	lines, err := getLines(ctx, q, id)
	if err != nil {
		return nil, err
	}
	e.Lines = lines
	return e, nil
}

func scanEntry(row scanner) (*audit.Entry, error) {
	var e audit.Entry
	var createdAt, updatedAt string
	err := row.Scan(&e.ID, &e.Kind, &e.Code, &e.Description, &e.Status, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("scan entry: %w", err)
	}
	e.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	e.UpdatedAt, _ = time.Parse(timeLayout, updatedAt)
	return &e, nil
}

func getLines(ctx context.Context, q querier, entryID string) ([]audit.Line, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT l.id, l.account_id, a.code, a.name, l.type, l.value, l.reason
		FROM entry_lines l JOIN tb_accounts a ON a.id = l.account_id
		WHERE l.entry_id = ? ORDER BY l.id`, entryID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	defer rows.Close()

	lines := []audit.Line{}
	for rows.Next() {
		var l audit.Line
		if err := rows.Scan(&l.ID, &l.AccountID, &l.Code, &l.AccountName, &l.Type, &l.Amount, &l.Details); err != nil {
			return nil, fmt.Errorf("scan line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func checkCodeFree(ctx context.Context, tx *sql.Tx, tbID string, kind audit.Kind, code, exceptID string) error {
	var n int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM audit_entries
		WHERE trial_balance_id = ? AND type = ? AND code = ? AND id != ?`,
		tbID, string(kind), code, exceptID,
	).Scan(&n)
	if err != nil {
		return fmt.Errorf("check code: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("%w: %s", audit.ErrDuplicateCode, code)
	}
	return nil
}

// postEntry flips the entry to POSTED and applies its lines.
func postEntry(ctx context.Context, tx *sql.Tx, e *audit.Entry) error {
	if _, err := tx.ExecContext(ctx, `UPDATE audit_entries SET status = 'POSTED' WHERE id = ?`, e.ID); err != nil {
		return fmt.Errorf("post entry: %w", err)
	}
	if err := applyLines(ctx, tx, e.Kind, e.Lines, 1); err != nil {
		return err
	}
	e.Status = audit.StatusPosted
	return nil
}
