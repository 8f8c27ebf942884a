package cmd

import (
	"github.com/spf13/cobra"

	"github.com/simonvc/auditledger/internal/server"
	"github.com/simonvc/auditledger/internal/store"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Open(cfg.Server.DB)
		if err != nil {
			return err
		}
		defer st.Close()

		addr := cfg.Server.Addr
		if cmd.Flags().Changed("addr") {
			addr = serveAddr
		}
		srv := server.New(st, addr)
		return srv.ListenAndServe()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8888", "Listen address")
	rootCmd.AddCommand(serveCmd)
}
