package commands

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bankist-dev/bankist/internal/format"
	"github.com/bankist-dev/bankist/internal/model"
)

func newAccountsCommand() *cobra.Command {
	var repoDir string

	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "List accounts with balances and totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(repoDir)
			if err != nil {
				return err
			}
			return printAccounts(cmd.OutOrStdout(), p.accounts)
		},
	}

	cmd.Flags().StringVar(&repoDir, "repo", ".", "project directory")

	return cmd
}

func printAccounts(out io.Writer, accts []model.Account) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "LOGIN\tOWNER\tCURRENCY\tBALANCE\tIN\tOUT\tINTEREST")
	for _, a := range accts {
		sum := a.Summarize()
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			a.ID, a.Owner, a.Currency,
			format.Money(a.Balance(), a.Currency, a.Locale),
			format.Money(sum.Inflow, a.Currency, a.Locale),
			format.Money(sum.Outflow, a.Currency, a.Locale),
			format.Money(sum.Interest, a.Currency, a.Locale),
		)
	}
	return tw.Flush()
}
