package cmd

import (
	"context"
	"fmt"

	"github.com/kbrou/syscompta/internal/client"
	"github.com/spf13/cobra"
)

var clientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "Manage client files",
}

var clientsCreateName string

var clientsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a client file (bootstraps the chart of accounts)",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)
		created, err := c.CreateClient(context.Background(), clientsCreateName)
		if err != nil {
			return err
		}
		fmt.Printf("Client file created: [%d] %s\n", created.ID, created.Name)
		return nil
	},
}

var clientsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List client files",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)
		clients, err := c.ListClients(context.Background())
		if err != nil {
			return err
		}
		for _, cl := range clients {
			fmt.Printf("[%d] %-30s %s\n", cl.ID, cl.Name, cl.Status)
		}
		return nil
	},
}

var (
	dashClientID int64
	dashYear     int
	dashMonth    int
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show a client file's period KPIs",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.New(flagServer)
		k, err := c.Dashboard(context.Background(), dashClientID, dashYear, dashMonth)
		if err != nil {
			return err
		}
		fmt.Printf("Period %d", k.Year)
		if k.Month != 0 {
			fmt.Printf("-%02d", k.Month)
		}
		fmt.Println()
		fmt.Printf("  entries:          %d\n", k.EntryCount)
		fmt.Printf("  total debit:      %s\n", k.TotalDebit.StringFixed(2))
		fmt.Printf("  total credit:     %s\n", k.TotalCredit.StringFixed(2))
		fmt.Printf("  treasury balance: %s\n", k.TreasuryBalance.StringFixed(2))
		fmt.Printf("  revenue (year):   %s\n", k.RevenueYear.StringFixed(2))
		fmt.Printf("  net income:       %s\n", k.NetIncomeYear.StringFixed(2))
		if k.UnbalancedCount > 0 {
			fmt.Printf("  UNBALANCED:       %d entries\n", k.UnbalancedCount)
			for _, e := range k.UnbalancedSample {
				fmt.Printf("    %s %s (%s)\n", e.PieceNumber, e.Label, e.Balance.StringFixed(2))
			}
		}
		return nil
	},
}

func init() {
	clientsCreateCmd.Flags().StringVar(&clientsCreateName, "name", "", "Client file name")
	clientsCreateCmd.MarkFlagRequired("name")
	clientsCmd.AddCommand(clientsCreateCmd, clientsListCmd)

	dashboardCmd.Flags().Int64Var(&dashClientID, "client", 0, "Client file id")
	dashboardCmd.MarkFlagRequired("client")
	dashboardCmd.Flags().IntVar(&dashYear, "year", 0, "Year (default: current)")
	dashboardCmd.Flags().IntVar(&dashMonth, "month", 0, "Month 1-12 (default: whole year)")

	rootCmd.AddCommand(clientsCmd, dashboardCmd)
}
