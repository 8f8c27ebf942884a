package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonvc/auditledger/internal/api"
	"github.com/simonvc/auditledger/internal/audit"
)

const (
	cashID = "7c9e6679-7425-40de-944b-e07fc1f90ae7"
	feesID = "16fd2706-8baf-433b-82eb-8c7fada847da"
)

const entryJSON = `{"data":{"id":"e1","type":"ADJUSTMENT","code":"AA1","description":"","status":"DRAFT",
	"lines":[{"id":"1","trialBalanceAccountId":"` + cashID + `","code":"1010","accountName":"Cash","type":"DEBIT","value":500,"reason":""}],
	"createdAt":"2026-01-02T03:04:05Z","updatedAt":"2026-01-02T03:04:05Z"}}`

// fakeBackend answers every request with respond and records what it saw.
type fakeBackend struct {
	mu       sync.Mutex
	requests []*http.Request
	bodies   []string
	respond  func(w http.ResponseWriter, r *http.Request)
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, r)
	f.bodies = append(f.bodies, string(body))
	f.mu.Unlock()
	f.respond(w, r)
}

func (f *fakeBackend) sent() ([]*http.Request, []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.requests), slices.Clone(f.bodies)
}

func (f *fakeBackend) count(method, pathSuffix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.requests {
		if r.Method == method && strings.HasSuffix(r.URL.Path, pathSuffix) {
			n++
		}
	}
	return n
}

func newFake(t *testing.T, respond func(w http.ResponseWriter, r *http.Request)) (*fakeBackend, *Client) {
	t.Helper()
	f := &fakeBackend{respond: respond}
	ts := httptest.NewServer(f)
	t.Cleanup(ts.Close)
	return f, New(ts.URL)
}

func reply(status int, body string) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}
}

func entry(status audit.Status, debit, credit string) *audit.Entry {
	return &audit.Entry{
		Kind:   audit.KindAdjustment,
		Code:   "AA1",
		Status: status,
		Lines: []audit.Line{
			{ID: 1, AccountID: cashID, Type: audit.Debit, Amount: decimal.RequireFromString(debit)},
			{ID: 2, AccountID: feesID, Type: audit.Credit, Amount: decimal.RequireFromString(credit)},
		},
	}
}

func TestCreateEntryRejectsInvalidAccountBeforeNetwork(t *testing.T) {
	f, c := newFake(t, reply(http.StatusCreated, entryJSON))

	e := entry(audit.StatusDraft, "10", "10")
	e.Lines[0].AccountID = "not-a-uuid"

	_, err := c.CreateEntry(context.Background(), "c1", "tb1", e, audit.StatusDraft)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Entry 1")
	assert.Contains(t, err.Error(), "Invalid account ID format")
	reqs, _ := f.sent()
	assert.Empty(t, reqs)
}

func TestCreateEntryBalanceGate(t *testing.T) {
	f, c := newFake(t, reply(http.StatusCreated, entryJSON))
	ctx := context.Background()

	_, err := c.CreateEntry(ctx, "c1", "tb1", entry(audit.StatusPosted, "500", "450"), audit.StatusPosted)
	assert.ErrorIs(t, err, audit.ErrUnbalancedEntry)
	reqs, _ := f.sent()
	assert.Empty(t, reqs)

	created, err := c.CreateEntry(ctx, "c1", "tb1", entry(audit.StatusDraft, "500", "450"), audit.StatusDraft)
	require.NoError(t, err)
	assert.Equal(t, "e1", created.ID)
	_, bodies := f.sent()
	require.Len(t, bodies, 1)

	var sent api.CreateEntryRequest
	require.NoError(t, json.Unmarshal([]byte(bodies[0]), &sent))
	assert.Equal(t, audit.StatusDraft, sent.Status)
	assert.Len(t, sent.Lines, 2)
	assert.Equal(t, cashID, sent.Lines[0].TrialBalanceAccountID)
}

func TestUpdateEntrySendsNoLines(t *testing.T) {
	f, c := newFake(t, reply(http.StatusOK, entryJSON))

	e := entry(audit.StatusDraft, "5", "5")
	e.ID = "e1"
	_, err := c.UpdateEntry(context.Background(), "c1", "tb1", e, audit.StatusPosted)
	require.NoError(t, err)

	reqs, bodies := f.sent()
	require.Len(t, reqs, 1)
	assert.Equal(t, "PUT", reqs[0].Method)
	assert.Equal(t, "/api/v1/audit-cycles/c1/trial-balances/tb1/entries/e1", reqs[0].URL.Path)

	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(bodies[0]), &body))
	assert.NotContains(t, body, "lines")
	assert.Equal(t, "POSTED", body["status"])
}

func TestUpdateEntryBlocksUnbalancedPost(t *testing.T) {
	f, c := newFake(t, reply(http.StatusOK, entryJSON))

	e := entry(audit.StatusDraft, "5", "4")
	e.ID = "e1"
	_, err := c.UpdateEntry(context.Background(), "c1", "tb1", e, audit.StatusPosted)
	assert.ErrorIs(t, err, audit.ErrUnbalancedEntry)

	e.Code = " "
	_, err = c.UpdateEntry(context.Background(), "c1", "tb1", e, audit.StatusDraft)
	assert.ErrorIs(t, err, audit.ErrMissingCode)
	reqs, _ := f.sent()
	assert.Empty(t, reqs)
}

func TestMutationsInvalidateCache(t *testing.T) {
	f, c := newFake(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == "GET" && strings.HasSuffix(r.URL.Path, "/entries"):
			reply(http.StatusOK, `{"data":[]}`)(w, r)
		case r.Method == "GET":
			reply(http.StatusOK, `{"data":{"id":"tb1","cycleId":"c1","name":"FY","accounts":[],"createdAt":"2026-01-02T03:04:05Z"}}`)(w, r)
		case r.Method == "POST":
			reply(http.StatusCreated, entryJSON)(w, r)
		default:
			reply(http.StatusOK, entryJSON)(w, r)
		}
	})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := c.ListEntries(ctx, "c1", "tb1", "")
		require.NoError(t, err)
		_, err = c.GetTrialBalance(ctx, "c1", "tb1")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, f.count("GET", "/entries"))
	assert.Equal(t, 1, f.count("GET", "/tb1"))

	_, err := c.CreateEntry(ctx, "c1", "tb1", entry(audit.StatusDraft, "1", "1"), audit.StatusDraft)
	require.NoError(t, err)
	assert.False(t, c.Cache().Has(EntriesKey("c1", "tb1")))
	assert.False(t, c.Cache().Has(TrialBalanceKey("c1", "tb1")))

	_, err = c.ListEntries(ctx, "c1", "tb1", "")
	require.NoError(t, err)
	assert.Equal(t, 2, f.count("GET", "/entries"))

	require.NoError(t, c.DeleteEntry(ctx, "c1", "tb1", "e1"))
	assert.False(t, c.Cache().Has(EntriesKey("c1", "tb1")))
}

func TestFailedMutationKeepsCache(t *testing.T) {
	_, c := newFake(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == "GET" {
			reply(http.StatusOK, `{"data":[]}`)(w, r)
			return
		}
		reply(http.StatusConflict, `{"error":"entry code already exists: AA1"}`)(w, r)
	})
	ctx := context.Background()

	_, err := c.ListEntries(ctx, "c1", "tb1", "")
	require.NoError(t, err)

	_, err = c.CreateEntry(ctx, "c1", "tb1", entry(audit.StatusDraft, "1", "1"), audit.StatusDraft)
	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, http.StatusConflict, remote.Status)
	assert.Equal(t, "entry code already exists: AA1", err.Error())
	assert.True(t, c.Cache().Has(EntriesKey("c1", "tb1")))
}

func TestMutationsAreNotRetried(t *testing.T) {
	f, c := newFake(t, reply(http.StatusInternalServerError, `{"error":"database is locked"}`))

	err := c.DeleteEntry(context.Background(), "c1", "tb1", "e1")
	require.Error(t, err)
	assert.Equal(t, "database is locked", err.Error())
	reqs, _ := f.sent()
	assert.Len(t, reqs, 1)
}

func TestShapeMismatchFailsLoudly(t *testing.T) {
	_, c := newFake(t, reply(http.StatusOK, `{"data":{"id":"e1","type":"ADJUSTMENT","status":"DRAFT","unexpected":true}}`))

	_, err := c.GetEntry(context.Background(), "c1", "tb1", "e1")
	assert.ErrorIs(t, err, api.ErrShapeMismatch)
}

func TestSecondMutationForSameEntryIsRejected(t *testing.T) {
	arrived := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	_, c := newFake(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			close(arrived)
			<-release
		}
		reply(http.StatusOK, entryJSON)(w, r)
	})
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- c.DeleteEntry(ctx, "c1", "tb1", "e1") }()
	<-arrived

	err := c.DeleteEntry(ctx, "c1", "tb1", "e1")
	assert.ErrorIs(t, err, ErrInFlight)

	// A different entry is not blocked.
	require.NoError(t, c.DeleteEntry(ctx, "c1", "tb1", "e2"))

	close(release)
	require.NoError(t, <-done)
	require.NoError(t, c.DeleteEntry(ctx, "c1", "tb1", "e1"))
}

func TestNextCodeFallsBackOnError(t *testing.T) {
	_, c := newFake(t, reply(http.StatusInternalServerError, `{"error":"boom"}`))
	assert.Equal(t, "RC1", c.NextCode(context.Background(), "c1", "tb1", audit.KindReclassification))
}

func TestUpdateEntryRejectsUnpostBeforeNetwork(t *testing.T) {
	f, c := newFake(t, reply(http.StatusOK, entryJSON))

	e := entry(audit.StatusPosted, "5", "5")
	e.ID = "e1"
	_, err := c.UpdateEntry(context.Background(), "c1", "tb1", e, audit.StatusDraft)
	assert.ErrorIs(t, err, audit.ErrInvalidTransition)
	assert.Equal(t, 0, f.count("PUT", "/entries/e1"))

	// Editing a posted entry's code keeps it posted.
	e.Code = "AA9"
	_, err = c.UpdateEntry(context.Background(), "c1", "tb1", e, audit.StatusPosted)
	require.NoError(t, err)
	assert.Equal(t, 1, f.count("PUT", "/entries/e1"))
}

func TestUnsavedEntryIsNotSent(t *testing.T) {
	f, c := newFake(t, reply(http.StatusOK, entryJSON))
	ctx := context.Background()

	_, err := c.UpdateEntry(ctx, "c1", "tb1", entry(audit.StatusDraft, "5", "5"), audit.StatusPosted)
	assert.ErrorIs(t, err, ErrNotPersisted)

	err = c.DeleteEntry(ctx, "c1", "tb1", "")
	assert.ErrorIs(t, err, ErrNotPersisted)

	reqs, _ := f.sent()
	assert.Empty(t, reqs)
}

func TestSnapshotLoadsTrialBalanceAndEntries(t *testing.T) {
	f, c := newFake(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/entries") {
			reply(http.StatusOK, `{"data":[`+strings.TrimSuffix(strings.TrimPrefix(entryJSON, `{"data":`), "}")+`]}`)(w, r)
			return
		}
		reply(http.StatusOK, `{"data":{"id":"tb1","cycleId":"c1","name":"FY","accounts":[],"createdAt":"2026-01-02T03:04:05Z"}}`)(w, r)
	})

	snap, err := c.Snapshot(context.Background(), "c1", "tb1")
	require.NoError(t, err)
	assert.Equal(t, "FY", snap.TrialBalance.Name)
	require.Len(t, snap.Entries, 1)
	assert.Equal(t, "AA1", snap.Entries[0].Code)
	assert.Equal(t, 1, f.count("GET", "/entries"))
	assert.Equal(t, 1, f.count("GET", "/tb1"))

	// Both halves now come from the cache.
	_, err = c.Snapshot(context.Background(), "c1", "tb1")
	require.NoError(t, err)
	reqs, _ := f.sent()
	assert.Len(t, reqs, 2)
}

func TestSnapshotFailsWhenEitherHalfFails(t *testing.T) {
	_, c := newFake(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/entries") {
			reply(http.StatusOK, `{"data":[]}`)(w, r)
			return
		}
		reply(http.StatusNotFound, `{"error":"trial balance not found"}`)(w, r)
	})

	_, err := c.Snapshot(context.Background(), "c1", "tb1")
	var remote *RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, http.StatusNotFound, remote.Status)
}
