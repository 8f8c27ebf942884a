package api

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	numTBFields       = 5
	colCode           = 0
	colAccountName    = 1
	colClassification = 2
	colCurrentYear    = 3
	colPriorYear      = 4
)

// ReadTrialBalanceCSV reads a trial balance export with the header
// code,account_name,classification,current_year,prior_year.
func ReadTrialBalanceCSV(r io.Reader, name string) (CreateTrialBalanceRequest, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numTBFields
	cr.TrimLeadingSpace = true

	records, err := cr.ReadAll()
	if err != nil {
		return CreateTrialBalanceRequest{}, fmt.Errorf("reading trial balance CSV: %w", err)
	}

	req := CreateTrialBalanceRequest{Name: name, Accounts: []AccountRequest{}}
	if len(records) == 0 {
		return req, nil
	}

	for i, rec := range records[1:] {
		acct, err := unmarshalAccount(rec)
		if err != nil {
			return CreateTrialBalanceRequest{}, fmt.Errorf("row %d: %w", i+2, err)
		}
		req.Accounts = append(req.Accounts, acct)
	}
	return req, nil
}

func unmarshalAccount(record []string) (AccountRequest, error) {
	current, err := parseCSVAmount(record[colCurrentYear])
	if err != nil {
		return AccountRequest{}, fmt.Errorf("invalid current_year %q: %w", record[colCurrentYear], err)
	}
	prior, err := parseCSVAmount(record[colPriorYear])
	if err != nil {
		return AccountRequest{}, fmt.Errorf("invalid prior_year %q: %w", record[colPriorYear], err)
	}
	return AccountRequest{
		Code:           strings.TrimSpace(record[colCode]),
		AccountName:    strings.TrimSpace(record[colAccountName]),
		Classification: strings.TrimSpace(record[colClassification]),
		CurrentYear:    current,
		PriorYear:      prior,
	}, nil
}

// parseCSVAmount accepts thousands separators and accounting-style
// parentheses for negatives. An empty cell is zero.
func parseCSVAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return decimal.Zero, nil
	}
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = s[1 : len(s)-1]
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if neg {
		d = d.Neg()
	}
	return d, nil
}
