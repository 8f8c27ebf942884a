package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonvc/auditledger/internal/client"
	"github.com/simonvc/auditledger/internal/config"
)

var (
	flagServer string
	flagDB     string
	flagConfig string
	flagCycle  string
	flagTB     string
)

// cfg is loaded before every command runs; flags given on the command line
// take precedence over the file.
var cfg = config.Default()

var rootCmd = &cobra.Command{
	Use:   "auditledger",
	Short: "Audit adjustments and reclassifications against a trial balance",
	Long:  "Record balanced audit adjustments (AA) and reclassifications (RC) against an imported trial balance, backed by SQLite.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.LoadOrDefault(flagConfig)
		if err != nil {
			return err
		}
		cfg = loaded

		flags := cmd.Flags()
		if flags.Changed("server") {
			cfg.Server.URL = flagServer
		}
		if flags.Changed("db") {
			cfg.Server.DB = flagDB
		}
		if flags.Changed("cycle") {
			cfg.CycleID = flagCycle
		}
		if flags.Changed("tb") {
			cfg.TrialBalance = flagTB
		}
		return nil
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagServer, "server", "http://localhost:8888", "Server address")
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "auditledger.db", "SQLite database path")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", config.DefaultPath(), "Config file")
	rootCmd.PersistentFlags().StringVar(&flagCycle, "cycle", "", "Audit cycle ID")
	rootCmd.PersistentFlags().StringVar(&flagTB, "tb", "", "Trial balance ID")
}

func Execute() error {
	return rootCmd.Execute()
}

func newClient() *client.Client {
	return client.New(cfg.Server.URL, client.WithTimeout(cfg.HTTP.Timeout))
}

// target returns the audit cycle and trial balance every entry command acts on.
func target() (cycleID, tbID string, err error) {
	if cfg.CycleID == "" {
		return "", "", fmt.Errorf("no audit cycle selected: pass --cycle or set cycle_id in %s", flagConfig)
	}
	if cfg.TrialBalance == "" {
		return "", "", fmt.Errorf("no trial balance selected: pass --tb or set trial_balance_id in %s", flagConfig)
	}
	return cfg.CycleID, cfg.TrialBalance, nil
}
