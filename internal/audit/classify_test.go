package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractGroups(t *testing.T) {
	accounts := []TrialBalanceAccount{
		{Code: "1", Classification: "Equity", FinalBalance: dec("50")},
		{Code: "2", Classification: "Equity", FinalBalance: dec("30")},
		{Code: "3", Classification: "Assets", FinalBalance: dec("10")},
	}

	groups := ExtractGroups(accounts)
	require.Len(t, groups, 2)

	assert.Equal(t, "Equity", groups[0].Label)
	assert.Equal(t, "equity", groups[0].ID)
	assert.True(t, groups[0].Totals.FinalBalance.Equal(dec("80")))
	assert.Equal(t, []string{"1", "2"}, groups[0].MemberAccountCodes)

	assert.Equal(t, "Assets", groups[1].Label)
	assert.True(t, groups[1].Totals.FinalBalance.Equal(dec("10")))
	assert.True(t, groups[1].HasMember("3"))
	assert.False(t, groups[1].HasMember("1"))
}

func TestExtractGroups_SumsAllColumns(t *testing.T) {
	accounts := []TrialBalanceAccount{
		{Code: "1010", Classification: "Current Assets", CurrentYear: dec("100"), PriorYear: dec("90"), Adjustments: dec("5"), ReClassification: dec("-2"), FinalBalance: dec("103")},
		{Code: "1020", Classification: "Current Assets", CurrentYear: dec("50.5"), PriorYear: dec("40"), Adjustments: dec("0"), ReClassification: dec("2"), FinalBalance: dec("52.5")},
	}
	groups := ExtractGroups(accounts)
	require.Len(t, groups, 1)
	tot := groups[0].Totals
	assert.True(t, tot.CurrentYear.Equal(dec("150.5")))
	assert.True(t, tot.PriorYear.Equal(dec("130")))
	assert.True(t, tot.Adjustments.Equal(dec("5")))
	assert.True(t, tot.ReClassification.Equal(dec("0")))
	assert.True(t, tot.FinalBalance.Equal(dec("155.5")))
	assert.Equal(t, "current-assets", groups[0].ID)
}

func TestExtractGroups_FallsBackToCodeRange(t *testing.T) {
	groups := ExtractGroups([]TrialBalanceAccount{{Code: "2030"}, {Code: "X1"}})
	require.Len(t, groups, 2)
	assert.Equal(t, "Liabilities", groups[0].Label)
	assert.Equal(t, Unclassified, groups[1].Label)
}

func TestRowsForGroup(t *testing.T) {
	accounts := []TrialBalanceAccount{
		{Code: "1", Classification: "Equity"},
		{Code: "2", Classification: "Assets"},
		{Code: "3", Classification: "Equity"},
	}
	groups := ExtractGroups(accounts)
	rows := RowsForGroup(accounts, groups[0])
	require.Len(t, rows, 2)
	assert.Equal(t, "1", rows[0].Code)
	assert.Equal(t, "3", rows[1].Code)
}

func TestExtractGroups_MergesLabelsWithSameID(t *testing.T) {
	accounts := []TrialBalanceAccount{
		{Code: "3000", Classification: "Equity", FinalBalance: dec("50")},
		{Code: "3100", Classification: "equity", FinalBalance: dec("30")},
		{Code: "1500", Classification: "A&B", FinalBalance: dec("7")},
		{Code: "1600", Classification: "A B", FinalBalance: dec("3")},
	}

	groups := ExtractGroups(accounts)
	require.Len(t, groups, 2)
	assert.Equal(t, "equity", groups[0].ID)
	assert.Equal(t, "Equity", groups[0].Label)
	assert.True(t, groups[0].Totals.FinalBalance.Equal(dec("80")))
	assert.Equal(t, "a-b", groups[1].ID)
	assert.Equal(t, []string{"1500", "1600"}, groups[1].MemberAccountCodes)

	rows := RowsForGroup(accounts, groups[0])
	require.Len(t, rows, 2)
	assert.Equal(t, "3100", rows[1].Code)

	ids := map[string]bool{}
	for _, g := range groups {
		assert.False(t, ids[g.ID], "duplicate group id %q", g.ID)
		ids[g.ID] = true
	}
}

func TestBuildTree(t *testing.T) {
	accounts := []TrialBalanceAccount{
		{Code: "1010", Classification: "Assets > Current Assets > Cash", FinalBalance: dec("10")},
		{Code: "1020", Classification: "Assets > Current Assets", FinalBalance: dec("5")},
		{Code: "1500", Classification: "Assets > Intangible Assets", FinalBalance: dec("7")},
		{Code: "3010", Classification: "Equity", FinalBalance: dec("-22")},
	}
	tree := BuildTree(accounts)

	require.Len(t, tree.Roots, 2)
	assets := tree.Nodes[tree.Roots[0]]
	assert.Equal(t, "Assets", assets.Label)
	assert.Equal(t, -1, assets.Parent)
	assert.True(t, assets.Totals.FinalBalance.Equal(dec("22")))
	require.Len(t, assets.Children, 2)

	current := tree.Nodes[assets.Children[0]]
	assert.Equal(t, "Assets > Current Assets", current.Path)
	assert.True(t, current.Totals.FinalBalance.Equal(dec("15")))
	assert.Equal(t, []int{1}, current.Accounts)

	var visited []string
	tree.Walk(func(i int, n *TreeNode) bool {
		visited = append(visited, n.Path)
		return true
	})
	assert.Equal(t, []string{
		"Assets",
		"Assets > Current Assets",
		"Assets > Current Assets > Cash",
		"Assets > Intangible Assets",
		"Equity",
	}, visited)

	cashNode := current.Children[0]
	assert.Equal(t, []int{assets.Children[0], tree.Roots[0]}, tree.Ancestors(cashNode))
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "1,234.50", FormatAmount(dec("1234.5")))
	assert.Equal(t, "(20.00)", FormatAmount(dec("-20")))
	assert.Equal(t, "0.00", FormatAmount(dec("0")))

	d, err := ParseAmount("1,250.75")
	require.NoError(t, err)
	assert.True(t, d.Equal(dec("1250.75")))
}
