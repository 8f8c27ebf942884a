package audit

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// GroupTotals aggregates the numeric trial-balance columns of a group.
type GroupTotals struct {
	CurrentYear      decimal.Decimal `json:"currentYear"`
	PriorYear        decimal.Decimal `json:"priorYear"`
	ReClassification decimal.Decimal `json:"reClassification"`
	Adjustments      decimal.Decimal `json:"adjustments"`
	FinalBalance     decimal.Decimal `json:"finalBalance"`
}

func (t *GroupTotals) add(a TrialBalanceAccount) {
	t.CurrentYear = t.CurrentYear.Add(a.CurrentYear)
	t.PriorYear = t.PriorYear.Add(a.PriorYear)
	t.ReClassification = t.ReClassification.Add(a.ReClassification)
	t.Adjustments = t.Adjustments.Add(a.Adjustments)
	t.FinalBalance = t.FinalBalance.Add(a.FinalBalance)
}

// ClassificationGroup is a derived view over the accounts sharing one label.
type ClassificationGroup struct {
	ID                 string      `json:"id"`
	Label              string      `json:"label"`
	Totals             GroupTotals `json:"totals"`
	MemberAccountCodes []string    `json:"memberAccountCodes"`
}

// HasMember reports whether code belongs to the group.
func (g ClassificationGroup) HasMember(code string) bool {
	return slices.Contains(g.MemberAccountCodes, code)
}

// ExtractGroups partitions accounts by classification. Labels that share a
// GroupID ("Equity", "equity", "A&B", "A B") form one group, labelled as first
// seen. Groups appear in the order their label is first seen.
func ExtractGroups(accounts []TrialBalanceAccount) []ClassificationGroup {
	var groups []ClassificationGroup
	index := make(map[string]int)
	for _, a := range accounts {
		label := a.ClassificationLabel()
		id := groupKey(label)
		i, ok := index[id]
		if !ok {
			i = len(groups)
			index[id] = i
			groups = append(groups, ClassificationGroup{ID: id, Label: label})
		}
		g := &groups[i]
		g.Totals.add(a)
		if !slices.Contains(g.MemberAccountCodes, a.Code) {
			g.MemberAccountCodes = append(g.MemberAccountCodes, a.Code)
		}
	}
	return groups
}

// RowsForGroup returns the accounts that belong to group, in input order.
func RowsForGroup(accounts []TrialBalanceAccount, group ClassificationGroup) []TrialBalanceAccount {
	var rows []TrialBalanceAccount
	for _, a := range accounts {
		if groupKey(a.ClassificationLabel()) == group.ID {
			rows = append(rows, a)
		}
	}
	return rows
}

// groupKey is GroupID, falling back to the lowercased label for labels made
// only of punctuation.
func groupKey(label string) string {
	if id := GroupID(label); id != "" {
		return id
	}
	return strings.ToLower(strings.TrimSpace(label))
}

// GroupID turns a label into a stable lowercase slug.
func GroupID(label string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(label) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
