package api

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simonvc/auditledger/internal/audit"
)

func TestDecode_Entry(t *testing.T) {
	body := `{"data":{"id":"e1","type":"ADJUSTMENT","code":"AA1","description":"accrual","status":"POSTED",
		"lines":[{"id":"l1","trialBalanceAccountId":"7c9e6679-7425-40de-944b-e07fc1f90ae7","code":"1010","accountName":"Cash","type":"DEBIT","value":100.5,"reason":"x"}],
		"createdAt":"2026-01-02T03:04:05Z","updatedAt":"2026-01-02T03:04:05Z"}}`

	e, err := Decode[Entry](strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, "AA1", e.Code)

	dom := e.Audit()
	require.Len(t, dom.Lines, 1)
	assert.Equal(t, 1, dom.Lines[0].ID)
	assert.True(t, dom.Lines[0].Amount.Equal(decimal.RequireFromString("100.5")))
	assert.Equal(t, audit.StatusPosted, dom.Status)
}

func TestDecode_ShapeMismatch(t *testing.T) {
	tests := map[string]string{
		"unknown field":  `{"data":{"id":"e1","type":"ADJUSTMENT","status":"DRAFT","bogus":1}}`,
		"missing data":   `{}`,
		"null data":      `{"data":null}`,
		"error envelope": `{"error":"boom"}`,
		"bad status":     `{"data":{"id":"e1","type":"ADJUSTMENT","status":"OPEN"}}`,
		"not json":       `<html>`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decode[Entry](strings.NewReader(body))
			assert.ErrorIs(t, err, ErrShapeMismatch)
		})
	}
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "duplicate", ErrorMessage([]byte(`{"error":"duplicate"}`)))
	assert.Equal(t, "", ErrorMessage([]byte(`not json`)))
}

func TestUpdateRequestHasNoLines(t *testing.T) {
	e := &audit.Entry{
		Code:        "AA2",
		Description: "fix",
		Lines:       []audit.Line{{AccountID: "x", Type: audit.Debit, Amount: decimal.NewFromInt(5)}},
	}
	b, err := json.Marshal(NewUpdateEntryRequest(e, audit.StatusPosted))
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.NotContains(t, m, "lines")
	assert.Equal(t, "AA2", m["code"])
	assert.Equal(t, "POSTED", m["status"])
}

func TestCreateRequestAmountsAreNumbers(t *testing.T) {
	e := &audit.Entry{
		Kind: audit.KindReclassification,
		Code: "RC1",
		Lines: []audit.Line{
			{AccountID: "a", Type: audit.Credit, Amount: decimal.RequireFromString("12.50"), Details: "move"},
		},
	}
	b, err := json.Marshal(NewCreateEntryRequest(e, audit.StatusDraft))
	require.NoError(t, err)
	assert.Contains(t, string(b), `"value":12.5`)
	assert.Contains(t, string(b), `"reason":"move"`)
	assert.Contains(t, string(b), `"type":"RECLASSIFICATION"`)
}
