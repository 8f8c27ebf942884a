package api

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadTrialBalanceCSV(t *testing.T) {
	in := `code,account_name,classification,current_year,prior_year
1010,Cash,Assets,"1,250.50",900
2100,Accounts Payable,Liabilities,(300),(250.25)
4090,Fee Income,,-950.50,
`
	req, err := ReadTrialBalanceCSV(strings.NewReader(in), "FY2025")
	require.NoError(t, err)
	require.NoError(t, req.Validate())

	assert.Equal(t, "FY2025", req.Name)
	require.Len(t, req.Accounts, 3)
	assert.Equal(t, "1250.5", req.Accounts[0].CurrentYear.String())
	assert.Equal(t, "-300", req.Accounts[1].CurrentYear.String())
	assert.Equal(t, "-250.25", req.Accounts[1].PriorYear.String())
	assert.Equal(t, "", req.Accounts[2].Classification)
	assert.True(t, req.Accounts[2].PriorYear.IsZero())
}

func TestReadTrialBalanceCSVErrors(t *testing.T) {
	_, err := ReadTrialBalanceCSV(strings.NewReader("code,account_name,classification,current_year,prior_year\n1010,Cash,Assets,abc,0\n"), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")

	_, err = ReadTrialBalanceCSV(strings.NewReader("code,account_name\n1010,Cash\n"), "x")
	assert.Error(t, err)
}
