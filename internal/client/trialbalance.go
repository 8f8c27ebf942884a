package client

import (
	"context"
	"net/url"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/simonvc/auditledger/internal/api"
	"github.com/simonvc/auditledger/internal/audit"
)

func trialBalancesPath(cycleID string) string {
	return "/api/v1/audit-cycles/" + url.PathEscape(cycleID) + "/trial-balances"
}

func trialBalancePath(cycleID, tbID string) string {
	return trialBalancesPath(cycleID) + "/" + url.PathEscape(tbID)
}

// GetTrialBalance returns the trial balance with its accounts. The result is
// cached until an entry mutation invalidates it and must not be modified.
func (c *Client) GetTrialBalance(ctx context.Context, cycleID, tbID string) (*audit.TrialBalance, error) {
	return cached(c.cache, TrialBalanceKey(cycleID, tbID), func() (*audit.TrialBalance, error) {
		tb, err := get[api.TrialBalance](ctx, c, trialBalancePath(cycleID, tbID))
		if err != nil {
			return nil, err
		}
		out := audit.TrialBalance(*tb)
		return &out, nil
	})
}

func (c *Client) ListTrialBalances(ctx context.Context, cycleID string) ([]audit.TrialBalance, error) {
	list, err := get[[]audit.TrialBalance](ctx, c, trialBalancesPath(cycleID))
	if err != nil {
		return nil, err
	}
	return *list, nil
}

func (c *Client) ImportTrialBalance(ctx context.Context, cycleID string, req api.CreateTrialBalanceRequest) (*audit.TrialBalance, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	tb, err := send[api.TrialBalance](ctx, c, "POST", trialBalancesPath(cycleID), req)
	if err != nil {
		return nil, err
	}
	out := audit.TrialBalance(*tb)
	return &out, nil
}

// Groups returns the classification groups computed by the backend.
func (c *Client) Groups(ctx context.Context, cycleID, tbID string) ([]audit.ClassificationGroup, error) {
	groups, err := get[api.Groups](ctx, c, trialBalancePath(cycleID, tbID)+"/classifications")
	if err != nil {
		return nil, err
	}
	return *groups, nil
}

// Snapshot is a trial balance together with its entries.
type Snapshot struct {
	TrialBalance *audit.TrialBalance
	Entries      []audit.Entry
}

// Snapshot loads the trial balance and its entries concurrently.
func (c *Client) Snapshot(ctx context.Context, cycleID, tbID string) (*Snapshot, error) {
	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		tb, err := c.GetTrialBalance(gctx, cycleID, tbID)
		snap.TrialBalance = tb
		return err
	})
	g.Go(func() error {
		entries, err := c.ListEntries(gctx, cycleID, tbID, "")
		snap.Entries = entries
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *Client) ListNotifications(ctx context.Context, limit int) ([]api.Notification, error) {
	path := "/api/v1/notifications"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	list, err := get[api.NotificationList](ctx, c, path)
	if err != nil {
		return nil, err
	}
	return *list, nil
}

// StreamURL is the server-sent events endpoint for notifications.
func (c *Client) StreamURL() string {
	return c.baseURL + "/api/v1/notifications/stream"
}
