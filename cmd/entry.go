package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/simonvc/auditledger/internal/audit"
)

var entryCmd = &cobra.Command{
	Use:     "entry",
	Aliases: []string{"aje"},
	Short:   "Manage audit adjustments and reclassifications",
}

// entry create
var (
	entryKind        string
	entryCode        string
	entryDescription string
	entryStatus      string
	entryLines       []string // format: "account:DEBIT|CREDIT:amount[:details]"
	entryFrom        string
	entryRebind      []string // format: "old=new"
)

var entryCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an audit entry",
	Long: `Create an adjustment or reclassification with balanced lines.
Each --line is formatted as "account:DEBIT|CREDIT:amount[:details]" where account
is a trial balance account ID or code (e.g. "1010:DEBIT:250.00:accrued fees").
Without --code the next free code for the kind is suggested.

--from copies the lines of an existing entry, which is how the lines of a saved
entry are changed: create the corrected copy, then delete the original.
--rebind old=new moves copied lines from one account to another.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cycleID, tbID, err := target()
		if err != nil {
			return err
		}
		if len(entryLines) == 0 && entryFrom == "" {
			return fmt.Errorf("at least one --line or --from is required")
		}
		kind, err := audit.ParseKind(entryKind)
		if err != nil {
			return err
		}
		status, err := audit.ParseStatus(entryStatus)
		if err != nil {
			return err
		}

		ctx := context.Background()
		c := newClient()

		tb, err := c.GetTrialBalance(ctx, cycleID, tbID)
		if err != nil {
			return err
		}

		b := audit.NewBuilder()
		description := entryDescription
		if entryFrom != "" {
			src, err := c.GetEntry(ctx, cycleID, tbID, entryFrom)
			if err != nil {
				return err
			}
			if err := hydrate(b, tb, src, entryRebind); err != nil {
				return err
			}
			if !cmd.Flags().Changed("type") {
				kind = src.Kind
			}
			if !cmd.Flags().Changed("description") {
				description = src.Description
			}
		}
		for _, lineDef := range entryLines {
			if err := addLine(b, tb, lineDef); err != nil {
				return err
			}
		}

		code := entryCode
		if code == "" {
			code = c.NextCode(ctx, cycleID, tbID, kind)
		}

		e := &audit.Entry{
			Kind:        kind,
			Code:        code,
			Description: description,
			Status:      status,
			Lines:       b.Lines(),
		}
		created, err := c.CreateEntry(ctx, cycleID, tbID, e, status)
		if err != nil {
			return err
		}

		fmt.Printf("%s created: %s (%s)\n", created.Kind.Label(), created.Code, created.ID)
		printEntryLines(created)
		return nil
	},
}

// findAccount resolves ref as an account code or ID within tb.
func findAccount(tb *audit.TrialBalance, ref string) (audit.TrialBalanceAccount, bool) {
	for _, a := range tb.Accounts {
		if a.Code == ref || strings.EqualFold(a.AccountID, ref) {
			return a, true
		}
	}
	return audit.TrialBalanceAccount{}, false
}

// hydrate loads the lines of src into the builder and applies each
// "old=new" account rebinding to them.
func hydrate(b *audit.Builder, tb *audit.TrialBalance, src *audit.Entry, rebinds []string) error {
	b.Load(src.Lines)
	for _, r := range rebinds {
		from, to, ok := strings.Cut(r, "=")
		if !ok {
			return fmt.Errorf("invalid rebind %q, expected old=new", r)
		}
		account, ok := findAccount(tb, to)
		if !ok {
			return fmt.Errorf("rebind %q: no account %q in this trial balance", r, to)
		}
		moved := 0
		for _, l := range b.Lines() {
			if l.Code == from || strings.EqualFold(l.AccountID, from) {
				b.SetAccount(l.ID, account)
				moved++
			}
		}
		if moved == 0 {
			return fmt.Errorf("rebind %q: no copied line uses account %q", r, from)
		}
	}
	return nil
}

// addLine parses one --line flag into the builder. An account given by code
// is resolved against the trial balance; anything else is used as an ID.
func addLine(b *audit.Builder, tb *audit.TrialBalance, lineDef string) error {
	parts := strings.SplitN(lineDef, ":", 4)
	if len(parts) < 3 {
		return fmt.Errorf("invalid line format %q, expected account:DEBIT|CREDIT:amount[:details]", lineDef)
	}

	account, ok := findAccount(tb, parts[0])
	if !ok {
		account = audit.TrialBalanceAccount{AccountID: parts[0]}
	}

	lineType, err := audit.ParseLineType(parts[1])
	if err != nil {
		return fmt.Errorf("line %q: %w", lineDef, err)
	}
	amount, err := audit.ParseAmount(parts[2])
	if err != nil {
		return fmt.Errorf("invalid amount %q in line %q: %w", parts[2], lineDef, err)
	}

	l := b.AddLine(account)
	b.UpdateLine(l.ID, audit.FieldType, string(lineType))
	b.UpdateLine(l.ID, audit.FieldAmount, amount.String())
	if len(parts) == 4 {
		b.UpdateLine(l.ID, audit.FieldDetails, parts[3])
	}
	return nil
}

// entry list
var entryListKind string

var entryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List audit entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		cycleID, tbID, err := target()
		if err != nil {
			return err
		}
		var kind audit.Kind
		if entryListKind != "" {
			if kind, err = audit.ParseKind(entryListKind); err != nil {
				return err
			}
		}

		entries, err := newClient().ListEntries(context.Background(), cycleID, tbID, kind)
		if err != nil {
			return err
		}

		if len(entries) == 0 {
			fmt.Println("No entries found.")
			return nil
		}

		fmt.Printf("%-8s %-8s %-7s %15s %s\n", "CODE", "STATUS", "LINES", "DEBITS", "DESCRIPTION")
		fmt.Printf("%-8s %-8s %-7s %15s %s\n", "----", "------", "-----", "------", "-----------")
		for _, e := range entries {
			desc := e.Description
			if len(desc) > 40 {
				desc = desc[:38] + ".."
			}
			fmt.Printf("%-8s %-8s %-7d %15s %s\n",
				e.Code,
				e.Status,
				len(e.Lines),
				audit.FormatAmount(e.Totals().Debits),
				desc,
			)
		}
		return nil
	},
}

// entry get
var entryGetCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Get audit entry details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cycleID, tbID, err := target()
		if err != nil {
			return err
		}

		e, err := newClient().GetEntry(context.Background(), cycleID, tbID, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("ID:          %s\n", e.ID)
		fmt.Printf("Type:        %s\n", e.Kind.Label())
		fmt.Printf("Code:        %s\n", e.Code)
		fmt.Printf("Description: %s\n", e.Description)
		fmt.Printf("Status:      %s\n", e.Status)
		fmt.Printf("Updated:     %s\n", e.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
		printEntryLines(e)
		return nil
	},
}

func printEntryLines(e *audit.Entry) {
	fmt.Printf("Lines:\n")
	fmt.Printf("  %-4s %-8s %-28s %15s %s\n", "TYPE", "CODE", "ACCOUNT", "AMOUNT", "DETAILS")
	for _, l := range e.Lines {
		direction := "DR"
		if l.Type == audit.Credit {
			direction = "CR"
		}
		name := l.AccountName
		if len(name) > 28 {
			name = name[:26] + ".."
		}
		fmt.Printf("  %-4s %-8s %-28s %15s %s\n", direction, l.Code, name, audit.FormatAmount(l.Amount), l.Details)
	}
	t := e.Totals()
	fmt.Printf("  %-42s %15s\n", "Total debits", audit.FormatAmount(t.Debits))
	fmt.Printf("  %-42s %15s\n", "Total credits", audit.FormatAmount(t.Credits))
	if !t.IsBalanced {
		fmt.Printf("  [UNBALANCED by %s]\n", audit.FormatAmount(t.Balance))
	}
}

// entry update
var (
	updateCode        string
	updateDescription string
	updateStatus      string
)

var entryUpdateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Change the code, description or status of an entry",
	Long:  "Change the code, description or status of an entry. Lines cannot be changed; create a corrected copy with \"entry create --from\" and delete the original instead.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cycleID, tbID, err := target()
		if err != nil {
			return err
		}
		ctx := context.Background()
		c := newClient()

		e, err := c.GetEntry(ctx, cycleID, tbID, args[0])
		if err != nil {
			return err
		}

		flags := cmd.Flags()
		if flags.Changed("code") {
			e.Code = updateCode
		}
		if flags.Changed("description") {
			e.Description = updateDescription
		}
		status := e.Status
		if flags.Changed("status") {
			if status, err = audit.ParseStatus(updateStatus); err != nil {
				return err
			}
		}

		updated, err := c.UpdateEntry(ctx, cycleID, tbID, e, status)
		if err != nil {
			return err
		}
		fmt.Printf("Entry %s updated: %s, %s\n", updated.ID, updated.Code, updated.Status)
		return nil
	},
}

// entry post
var entryPostCmd = &cobra.Command{
	Use:   "post [id]",
	Short: "Post a draft entry to the trial balance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cycleID, tbID, err := target()
		if err != nil {
			return err
		}
		ctx := context.Background()
		c := newClient()

		e, err := c.GetEntry(ctx, cycleID, tbID, args[0])
		if err != nil {
			return err
		}
		posted, err := c.UpdateEntry(ctx, cycleID, tbID, e, audit.StatusPosted)
		if err != nil {
			return err
		}
		fmt.Printf("%s %s posted\n", posted.Kind.Label(), posted.Code)
		return nil
	},
}

// entry delete
var entryDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete an entry, reversing its effect if posted",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cycleID, tbID, err := target()
		if err != nil {
			return err
		}
		if err := newClient().DeleteEntry(context.Background(), cycleID, tbID, args[0]); err != nil {
			return err
		}
		fmt.Printf("Entry %s deleted\n", args[0])
		return nil
	},
}

// entry next-code
var nextCodeKind string

var entryNextCodeCmd = &cobra.Command{
	Use:   "next-code",
	Short: "Suggest the next free entry code",
	RunE: func(cmd *cobra.Command, args []string) error {
		cycleID, tbID, err := target()
		if err != nil {
			return err
		}
		kind, err := audit.ParseKind(nextCodeKind)
		if err != nil {
			return err
		}
		fmt.Println(newClient().NextCode(context.Background(), cycleID, tbID, kind))
		return nil
	},
}

func init() {
	entryCreateCmd.Flags().StringVar(&entryKind, "type", "ADJUSTMENT", "Entry type: ADJUSTMENT (AA) or RECLASSIFICATION (RC)")
	entryCreateCmd.Flags().StringVar(&entryCode, "code", "", "Entry code (default: next free code)")
	entryCreateCmd.Flags().StringVar(&entryDescription, "description", "", "Entry description")
	entryCreateCmd.Flags().StringVar(&entryStatus, "status", "DRAFT", "DRAFT or POSTED")
	entryCreateCmd.Flags().StringArrayVar(&entryLines, "line", nil, "Line in format account:DEBIT|CREDIT:amount[:details] (can be repeated)")
	entryCreateCmd.Flags().StringVar(&entryFrom, "from", "", "Copy the lines of an existing entry")
	entryCreateCmd.Flags().StringArrayVar(&entryRebind, "rebind", nil, "Move copied lines from one account to another: old=new (can be repeated)")

	entryListCmd.Flags().StringVar(&entryListKind, "type", "", "Filter by entry type")

	entryUpdateCmd.Flags().StringVar(&updateCode, "code", "", "New entry code")
	entryUpdateCmd.Flags().StringVar(&updateDescription, "description", "", "New description")
	entryUpdateCmd.Flags().StringVar(&updateStatus, "status", "", "New status")

	entryNextCodeCmd.Flags().StringVar(&nextCodeKind, "type", "ADJUSTMENT", "Entry type")

	entryCmd.AddCommand(entryCreateCmd)
	entryCmd.AddCommand(entryListCmd)
	entryCmd.AddCommand(entryGetCmd)
	entryCmd.AddCommand(entryUpdateCmd)
	entryCmd.AddCommand(entryPostCmd)
	entryCmd.AddCommand(entryDeleteCmd)
	entryCmd.AddCommand(entryNextCodeCmd)

	rootCmd.AddCommand(entryCmd)
}
