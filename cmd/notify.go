package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/simonvc/auditledger/internal/api"
	"github.com/simonvc/auditledger/internal/notify"
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Show backend notifications",
}

var notifyListLimit int

var notifyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent notifications",
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := newClient().ListNotifications(context.Background(), notifyListLimit)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println("No notifications.")
			return nil
		}
		for _, n := range list {
			printNotification(n)
		}
		return nil
	},
}

var notifyWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow notifications as they happen",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		bus := newNotificationBus()
		bus.Subscribe(printNotification)
		if err := bus.Connect(ctx); err != nil {
			return err
		}
		fmt.Printf("Watching %s (Ctrl-C to stop)\n", cfg.Server.URL)

		<-ctx.Done()
		bus.Disconnect()
		return nil
	},
}

func newNotificationBus() *notify.Bus {
	stream := notify.NewStream(newClient().StreamURL(),
		notify.WithReconnect(cfg.Notifications.Reconnect),
		notify.WithDedupWindow(cfg.Notifications.DedupWindow),
	)
	return notify.NewBus(stream)
}

func printNotification(n api.Notification) {
	fmt.Printf("%-16s %-24s %s\n", humanize.Time(n.CreatedAt), n.Kind, n.Title)
	if n.Message != "" {
		fmt.Printf("%-16s %-24s %s\n", "", "", n.Message)
	}
}

func init() {
	notifyListCmd.Flags().IntVar(&notifyListLimit, "limit", 20, "Number of notifications to show")

	notifyCmd.AddCommand(notifyListCmd)
	notifyCmd.AddCommand(notifyWatchCmd)
	rootCmd.AddCommand(notifyCmd)
}
