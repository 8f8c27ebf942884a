package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/simonvc/auditledger/internal/server"
	"github.com/simonvc/auditledger/internal/store"
	"github.com/simonvc/auditledger/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive terminal UI",
	Long:  "Browse entries, the trial balance and its classifications. Without --server an embedded server is started on a local port.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cycleID, tbID, err := target()
		if err != nil {
			return err
		}

		if !cmd.Flags().Changed("server") {
			st, err := store.Open(cfg.Server.DB)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer st.Close()

			ln, err := net.Listen("tcp", "127.0.0.1:0")
			if err != nil {
				return fmt.Errorf("listen: %w", err)
			}
			srv := server.New(st, ln.Addr().String())
			go func() {
				if err := srv.Serve(ln); err != nil {
					log.Printf("embedded server error: %v", err)
				}
			}()
			cfg.Server.URL = "http://" + ln.Addr().String()

			c := newClient()
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			for {
				if err := c.Ping(ctx); err == nil {
					break
				}
				if ctx.Err() != nil {
					return fmt.Errorf("timeout waiting for embedded server")
				}
				time.Sleep(50 * time.Millisecond)
			}
		}

		bus := newNotificationBus()
		if err := bus.Connect(context.Background()); err != nil {
			return err
		}
		defer bus.Disconnect()

		app := tui.NewApp(newClient(), bus, cycleID, tbID)
		defer app.Close()

		// The stream logs reconnects; keep them off the alt screen.
		log.SetOutput(io.Discard)
		_, err = tea.NewProgram(app, tea.WithAltScreen()).Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
