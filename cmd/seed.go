package cmd

import (
	"context"

	"github.com/kbrou/syscompta/internal/ledger"
	"github.com/kbrou/syscompta/internal/store"
	"github.com/spf13/cobra"
)

var seedClientName string

// seedCmd creates a demo client file: opening the store loads the SYSCOHADA
// template, and client creation clones it plus the six standard journals.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create a demo client file with the default chart and journals",
	RunE: func(cmd *cobra.Command, args []string) error {
		log := newLogger()
		st, err := store.Open(flagDB)
		if err != nil {
			return err
		}
		defer st.Close()

		ctx := context.Background()
		client := &ledger.Client{Name: seedClientName}
		if err := st.CreateClient(ctx, client); err != nil {
			return err
		}
		log.Info().Int64("client_id", client.ID).Str("name", client.Name).Msg("client file created")

		journals := []ledger.Journal{
			{Code: "AC", Label: "Journal des achats", Type: ledger.JournalPurchases},
			{Code: "VE", Label: "Journal des ventes", Type: ledger.JournalSales},
			{Code: "BQ", Label: "Journal de banque", Type: ledger.JournalBank},
			{Code: "CA", Label: "Journal de caisse", Type: ledger.JournalCash},
			{Code: "OD", Label: "Opérations diverses", Type: ledger.JournalMisc},
			{Code: "AN", Label: "À nouveaux", Type: ledger.JournalOpening},
		}
		for i := range journals {
			j := &journals[i]
			j.ClientID = client.ID
			j.Active = true
			if err := st.CreateJournal(ctx, j); err != nil {
				return err
			}
			log.Info().Str("code", j.Code).Msg("journal created")
		}
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedClientName, "name", "Dossier de démonstration", "Client file name")
	rootCmd.AddCommand(seedCmd)
}
