package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simonvc/auditledger/internal/audit"
)

// CreateTrialBalance stores a trial balance and its accounts. Missing ids are
// generated; final balances are recomputed from the other columns.
func (s *Store) CreateTrialBalance(ctx context.Context, tb *audit.TrialBalance) error {
	if tb.ID == "" {
		tb.ID = uuid.Must(uuid.NewV7()).String()
	}
	if tb.CreatedAt.IsZero() {
		tb.CreatedAt = time.Now().UTC()
	}

	tx, err := s.writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO trial_balances (id, cycle_id, name, created_at) VALUES (?, ?, ?, ?)`,
		tb.ID, tb.CycleID, tb.Name, tb.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert trial balance: %w", err)
	}

	for i := range tb.Accounts {
		a := &tb.Accounts[i]
		if a.AccountID == "" {
			a.AccountID = uuid.NewString()
		}
		a.AccountID = strings.ToLower(a.AccountID)
		a.Recompute()
		_, err = tx.ExecContext(ctx,
			`INSERT INTO tb_accounts (id, trial_balance_id, position, code, name, classification,
				current_year, prior_year, reclassification, adjustments, final_balance)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.AccountID, tb.ID, i, a.Code, a.AccountName, a.Classification,
			a.CurrentYear.String(), a.PriorYear.String(), a.ReClassification.String(),
			a.Adjustments.String(), a.FinalBalance.String(),
		)
		if err != nil {
			return fmt.Errorf("insert account %s: %w", a.Code, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// GetTrialBalance returns the trial balance with its accounts in import order.
// It returns ErrTrialBalanceNotFound when tbID does not belong to cycleID.
func (s *Store) GetTrialBalance(ctx context.Context, cycleID, tbID string) (*audit.TrialBalance, error) {
	var tb audit.TrialBalance
	var createdAt string
	err := s.reader.QueryRowContext(ctx,
		`SELECT id, cycle_id, name, created_at FROM trial_balances WHERE id = ? AND cycle_id = ?`,
		tbID, cycleID,
	).Scan(&tb.ID, &tb.CycleID, &tb.Name, &createdAt)
	if err == sql.ErrNoRows {
		return nil, audit.ErrTrialBalanceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get trial balance: %w", err)
	}
	tb.CreatedAt, _ = time.Parse(timeLayout, createdAt)

	rows, err := s.reader.QueryContext(ctx,
		`SELECT id, code, name, classification, current_year, prior_year, reclassification, adjustments, final_balance
		FROM tb_accounts WHERE trial_balance_id = ? ORDER BY position`, tbID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	tb.Accounts = []audit.TrialBalanceAccount{}
	for rows.Next() {
		var a audit.TrialBalanceAccount
		if err := rows.Scan(&a.AccountID, &a.Code, &a.AccountName, &a.Classification,
			&a.CurrentYear, &a.PriorYear, &a.ReClassification, &a.Adjustments, &a.FinalBalance); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		tb.Accounts = append(tb.Accounts, a)
	}
	return &tb, rows.Err()
}

// ListTrialBalances returns the trial balances of a cycle without accounts.
func (s *Store) ListTrialBalances(ctx context.Context, cycleID string) ([]audit.TrialBalance, error) {
	rows, err := s.reader.QueryContext(ctx,
		`SELECT id, cycle_id, name, created_at FROM trial_balances WHERE cycle_id = ? ORDER BY created_at`, cycleID)
	if err != nil {
		return nil, fmt.Errorf("list trial balances: %w", err)
	}
	defer rows.Close()

	var out []audit.TrialBalance
	for rows.Next() {
		var tb audit.TrialBalance
		var createdAt string
		if err := rows.Scan(&tb.ID, &tb.CycleID, &tb.Name, &createdAt); err != nil {
			return nil, fmt.Errorf("scan trial balance: %w", err)
		}
		tb.CreatedAt, _ = time.Parse(timeLayout, createdAt)
		out = append(out, tb)
	}
	return out, rows.Err()
}

// applyLines adds (sign=1) or removes (sign=-1) the effect of posted lines on
// the adjustment or reclassification column of each referenced account.
func applyLines(ctx context.Context, tx *sql.Tx, kind audit.Kind, lines []audit.Line, sign int64) error {
	column := "adjustments"
	if kind == audit.KindReclassification {
		column = "reclassification"
	}
	factor := decimal.NewFromInt(sign)

	for _, l := range lines {
		var cur, reclass, adj decimal.Decimal
		err := tx.QueryRowContext(ctx,
			`SELECT current_year, reclassification, adjustments FROM tb_accounts WHERE id = ?`, l.AccountID,
		).Scan(&cur, &reclass, &adj)
		if err == sql.ErrNoRows {
			return fmt.Errorf("%w: %s", audit.ErrAccountNotFound, l.AccountID)
		}
		if err != nil {
			return fmt.Errorf("read account %s: %w", l.AccountID, err)
		}

		delta := l.Amount.Mul(factor)
		if l.Type == audit.Credit {
			delta = delta.Neg()
		}
		if column == "adjustments" {
			adj = adj.Add(delta)
		} else {
			reclass = reclass.Add(delta)
		}
		final := cur.Add(reclass).Add(adj)

		_, err = tx.ExecContext(ctx,
			`UPDATE tb_accounts SET reclassification = ?, adjustments = ?, final_balance = ? WHERE id = ?`,
			reclass.String(), adj.String(), final.String(), l.AccountID,
		)
		if err != nil {
			return fmt.Errorf("update account %s: %w", l.AccountID, err)
		}
	}
	return nil
}
