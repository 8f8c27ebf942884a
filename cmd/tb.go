package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/simonvc/auditledger/internal/api"
	"github.com/simonvc/auditledger/internal/audit"
)

var tbCmd = &cobra.Command{
	Use:   "tb",
	Short: "Import and inspect trial balances",
}

// tb import
var (
	tbImportName string
	tbImportUse  bool
)

var tbImportCmd = &cobra.Command{
	Use:   "import [file.csv]",
	Short: "Import a trial balance from CSV",
	Long:  "Import a trial balance from a CSV file with the header code,account_name,classification,current_year,prior_year.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.CycleID == "" {
			return fmt.Errorf("no audit cycle selected: pass --cycle or set cycle_id in %s", flagConfig)
		}

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		name := tbImportName
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
		}
		req, err := api.ReadTrialBalanceCSV(f, name)
		if err != nil {
			return err
		}

		tb, err := newClient().ImportTrialBalance(context.Background(), cfg.CycleID, req)
		if err != nil {
			return err
		}
		fmt.Printf("Trial balance imported: %s (%d accounts)\n", tb.ID, len(tb.Accounts))

		if tbImportUse {
			cfg.TrialBalance = tb.ID
			if err := saveConfig(); err != nil {
				return err
			}
			fmt.Printf("Selected as the current trial balance in %s\n", flagConfig)
		}
		return nil
	},
}

var tbListCmd = &cobra.Command{
	Use:   "list",
	Short: "List trial balances of the audit cycle",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.CycleID == "" {
			return fmt.Errorf("no audit cycle selected: pass --cycle or set cycle_id in %s", flagConfig)
		}
		tbs, err := newClient().ListTrialBalances(context.Background(), cfg.CycleID)
		if err != nil {
			return err
		}
		if len(tbs) == 0 {
			fmt.Println("No trial balances found.")
			return nil
		}
		fmt.Printf("%-38s %-20s %s\n", "ID", "IMPORTED", "NAME")
		fmt.Printf("%-38s %-20s %s\n", "--", "--------", "----")
		for _, tb := range tbs {
			fmt.Printf("%-38s %-20s %s\n", tb.ID, tb.CreatedAt.Local().Format("2006-01-02 15:04"), tb.Name)
		}
		return nil
	},
}

var tbShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the trial balance with adjustments",
	RunE: func(cmd *cobra.Command, args []string) error {
		cycleID, tbID, err := target()
		if err != nil {
			return err
		}
		snap, err := newClient().Snapshot(context.Background(), cycleID, tbID)
		if err != nil {
			return err
		}
		printTrialBalance(snap.TrialBalance)
		printEntrySummary(snap.Entries)
		return nil
	},
}

var tbGroupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "Show totals by classification",
	RunE: func(cmd *cobra.Command, args []string) error {
		cycleID, tbID, err := target()
		if err != nil {
			return err
		}
		tb, err := newClient().GetTrialBalance(context.Background(), cycleID, tbID)
		if err != nil {
			return err
		}
		printGroups(tb)
		return nil
	},
}

const amountCol = 15

// printEntrySummary lists the entries behind the adjustment and reclass columns.
func printEntrySummary(entries []audit.Entry) {
	if len(entries) == 0 {
		return
	}
	fmt.Println()
	fmt.Printf("%-8s %-8s %15s %s\n", "ENTRY", "STATUS", "AMOUNT", "DESCRIPTION")
	for _, e := range entries {
		status := string(e.Status)
		if e.Status == audit.StatusDraft {
			status += "*"
		}
		fmt.Printf("%-8s %-8s %15s %s\n", e.Code, status, audit.FormatAmount(e.Totals().Debits), e.Description)
	}
	fmt.Println("* drafts are not reflected in the balances above")
}

func printTrialBalance(tb *audit.TrialBalance) {
	w := 8 + 30 + 4*(amountCol+1) + 2
	fmt.Println()
	fmt.Println(center("TRIAL BALANCE: "+strings.ToUpper(tb.Name), w))
	fmt.Println(center(strings.Repeat("=", 20), w))
	fmt.Println()

	fmt.Printf("  %-8s %-30s %15s %15s %15s %15s\n", "CODE", "ACCOUNT", "CURRENT", "RECLASS", "ADJUST", "FINAL")
	fmt.Printf("  %-8s %-30s %15s %15s %15s %15s\n", "----", "-------", "-------", "-------", "------", "-----")

	var total audit.GroupTotals
	for _, a := range tb.Accounts {
		name := a.AccountName
		if len(name) > 30 {
			name = name[:28] + ".."
		}
		fmt.Printf("  %-8s %-30s %15s %15s %15s %15s\n", a.Code, name,
			audit.FormatAmount(a.CurrentYear),
			blankZero(a.ReClassification),
			blankZero(a.Adjustments),
			audit.FormatAmount(a.FinalBalance))
		total.CurrentYear = total.CurrentYear.Add(a.CurrentYear)
		total.ReClassification = total.ReClassification.Add(a.ReClassification)
		total.Adjustments = total.Adjustments.Add(a.Adjustments)
		total.FinalBalance = total.FinalBalance.Add(a.FinalBalance)
	}

	fmt.Printf("  %s\n", strings.Repeat("─", w-2))
	fmt.Printf("  %-39s %15s %15s %15s %15s\n", "TOTALS",
		audit.FormatAmount(total.CurrentYear),
		audit.FormatAmount(total.ReClassification),
		audit.FormatAmount(total.Adjustments),
		audit.FormatAmount(total.FinalBalance))

	if total.FinalBalance.Abs().LessThan(audit.Tolerance) {
		fmt.Println("\n  [BALANCED]")
	} else {
		fmt.Println("\n  [UNBALANCED!]")
	}
}

func printGroups(tb *audit.TrialBalance) {
	tree := audit.BuildTree(tb.Accounts)

	fmt.Printf("  %-40s %15s %15s %15s\n", "CLASSIFICATION", "CURRENT", "ADJUSTMENTS", "FINAL")
	fmt.Printf("  %-40s %15s %15s %15s\n", "--------------", "-------", "-----------", "-----")
	tree.Walk(func(i int, n *audit.TreeNode) bool {
		label := strings.Repeat("  ", n.Depth) + n.Label
		fmt.Printf("  %-40s %15s %15s %15s\n", label,
			audit.FormatAmount(n.Totals.CurrentYear),
			audit.FormatAmount(n.Totals.Adjustments.Add(n.Totals.ReClassification)),
			audit.FormatAmount(n.Totals.FinalBalance))
		for _, ai := range n.Accounts {
			a := tb.Accounts[ai]
			label := strings.Repeat("  ", n.Depth+1) + a.Code + " " + a.AccountName
			if len(label) > 40 {
				label = label[:38] + ".."
			}
			fmt.Printf("  %-40s %15s %15s %15s\n", label,
				audit.FormatAmount(a.CurrentYear),
				blankZero(a.Adjustments.Add(a.ReClassification)),
				audit.FormatAmount(a.FinalBalance))
		}
		return true
	})
}

func center(s string, w int) string {
	if len(s) >= w {
		return s
	}
	pad := (w - len(s)) / 2
	return strings.Repeat(" ", pad) + s
}

func blankZero(d decimal.Decimal) string {
	if d.IsZero() {
		return "-"
	}
	return audit.FormatAmount(d)
}

func init() {
	tbImportCmd.Flags().StringVar(&tbImportName, "name", "", "Trial balance name (default: file name)")
	tbImportCmd.Flags().BoolVar(&tbImportUse, "use", false, "Select the imported trial balance in the config file")

	tbCmd.AddCommand(tbImportCmd)
	tbCmd.AddCommand(tbListCmd)
	tbCmd.AddCommand(tbShowCmd)
	tbCmd.AddCommand(tbGroupsCmd)

	rootCmd.AddCommand(tbCmd)
}
