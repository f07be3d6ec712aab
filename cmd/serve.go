package cmd

import (
	"os"

	"github.com/kbrou/syscompta/internal/server"
	"github.com/kbrou/syscompta/internal/store"
	"github.com/spf13/cobra"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Open(flagDB)
		if err != nil {
			return err
		}
		defer st.Close()

		srv := server.New(st, serveAddr, newLogger())
		return srv.ListenAndServe()
	},
}

func init() {
	addr := os.Getenv("SYSCOMPTA_ADDR")
	if addr == "" {
		addr = ":8787"
	}
	serveCmd.Flags().StringVar(&serveAddr, "addr", addr, "Listen address")
	rootCmd.AddCommand(serveCmd)
}
