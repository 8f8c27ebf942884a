package client

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"strings"

	"github.com/simonvc/auditledger/internal/api"
	"github.com/simonvc/auditledger/internal/audit"
)

func entriesPath(cycleID, tbID string) string {
	return trialBalancePath(cycleID, tbID) + "/entries"
}

// ListEntries returns the entries of the trial balance, optionally only those
// of one kind. The full listing is cached; filtering happens locally.
func (c *Client) ListEntries(ctx context.Context, cycleID, tbID string, kind audit.Kind) ([]audit.Entry, error) {
	all, err := cached(c.cache, EntriesKey(cycleID, tbID), func() ([]audit.Entry, error) {
		list, err := get[api.EntryList](ctx, c, entriesPath(cycleID, tbID))
		if err != nil {
			return nil, err
		}
		return list.Audit(), nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]audit.Entry, 0, len(all))
	for _, e := range all {
		if kind == "" || e.Kind == kind {
			e.Lines = slices.Clone(e.Lines)
			out = append(out, e)
		}
	}
	return out, nil
}

func (c *Client) GetEntry(ctx context.Context, cycleID, tbID, id string) (*audit.Entry, error) {
	e, err := get[api.Entry](ctx, c, entriesPath(cycleID, tbID)+"/"+url.PathEscape(id))
	if err != nil {
		return nil, err
	}
	out := e.Audit()
	return &out, nil
}

// NextCode suggests the next code for kind. When the listing cannot be
// loaded the first code of the sequence is suggested.
func (c *Client) NextCode(ctx context.Context, cycleID, tbID string, kind audit.Kind) string {
	entries, err := c.ListEntries(ctx, cycleID, tbID, kind)
	if err != nil {
		return audit.NextCode(kind, nil)
	}
	return audit.NextCode(kind, entries)
}

// CreateEntry validates e against the target status and submits it. Nothing
// is sent when validation fails.
func (c *Client) CreateEntry(ctx context.Context, cycleID, tbID string, e *audit.Entry, status audit.Status) (*audit.Entry, error) {
	if err := audit.Validate(e, status); err != nil {
		return nil, err
	}

	release, err := c.inflight.acquire("new/" + string(e.Kind) + "/" + strings.ToUpper(e.Code))
	if err != nil {
		return nil, err
	}
	defer release()

	created, err := send[api.Entry](ctx, c, "POST", entriesPath(cycleID, tbID), api.NewCreateEntryRequest(e, status))
	if err != nil {
		return nil, err
	}
	c.invalidate(cycleID, tbID)

	out := created.Audit()
	return &out, nil
}

// UpdateEntry changes the code, description and status of a persisted entry.
// Lines are never sent; changing them requires delete and recreate.
func (c *Client) UpdateEntry(ctx context.Context, cycleID, tbID string, e *audit.Entry, status audit.Status) (*audit.Entry, error) {
	if !e.Persisted() {
		return nil, ErrNotPersisted
	}
	if !audit.CanTransition(e.Status, status) {
		return nil, fmt.Errorf("%w: %s to %s", audit.ErrInvalidTransition, e.Status, status)
	}
	if strings.TrimSpace(e.Code) == "" {
		return nil, &audit.ValidationError{Field: "code", Err: audit.ErrMissingCode}
	}
	if status == audit.StatusPosted && len(e.Lines) > 0 {
		if err := audit.Validate(e, status); err != nil {
			return nil, err
		}
	}

	release, err := c.inflight.acquire(e.ID)
	if err != nil {
		return nil, err
	}
	defer release()

	updated, err := send[api.Entry](ctx, c, "PUT", entriesPath(cycleID, tbID)+"/"+url.PathEscape(e.ID), api.NewUpdateEntryRequest(e, status))
	if err != nil {
		return nil, err
	}
	c.invalidate(cycleID, tbID)

	out := updated.Audit()
	return &out, nil
}

// DeleteEntry removes an entry. The backend reverses a posted entry's effect.
func (c *Client) DeleteEntry(ctx context.Context, cycleID, tbID, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrNotPersisted
	}
	release, err := c.inflight.acquire(id)
	if err != nil {
		return err
	}
	defer release()

	if _, err := send[api.Entry](ctx, c, "DELETE", entriesPath(cycleID, tbID)+"/"+url.PathEscape(id), nil); err != nil {
		return err
	}
	c.invalidate(cycleID, tbID)
	return nil
}

func (c *Client) invalidate(cycleID, tbID string) {
	c.cache.Invalidate(EntriesKey(cycleID, tbID), TrialBalanceKey(cycleID, tbID))
}
