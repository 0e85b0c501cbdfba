package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/andrewpark3412/gift-tracking/internal/household"
	"github.com/spf13/cobra"
)

var totalsCmd = &cobra.Command{
	Use:   "totals <list-id>",
	Short: "Show budget totals for a list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCore(cmd.Context(), func(ctx context.Context, c *core) error {
			people, gifts, err := c.svc.LoadList(ctx, args[0])
			if err != nil {
				return err
			}
			totals := household.Totals(people, gifts)
			if jsonFlag {
				perPerson := make([]household.PersonTotals, 0, len(people))
				for _, p := range people {
					perPerson = append(perPerson, household.Summarise(p, gifts))
				}
				return printJSON(map[string]any{"list": totals, "people": perPerson})
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PERSON\tBUDGET\tSPENT\tREMAINING\tGIFTS\tWRAPPED")
			for _, p := range people {
				t := household.Summarise(p, gifts)
				flag := ""
				if t.OverBudget {
					flag = " !"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s%s\t%d\t%d\n",
					truncate(p.Name, 24), optMoney(t.Budget), money(t.Spent), optMoney(t.Remaining), flag, t.GiftCount, t.Wrapped)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Printf("\nBudget %s, spent %s, remaining %s, %d of %d over budget\n",
				money(totals.TotalBudget), money(totals.TotalSpent), optMoney(totals.RemainingBudget),
				totals.OverBudgetPeopleCount, totals.PeopleCount)
			return nil
		})
	},
}

var wrappingCmd = &cobra.Command{
	Use:   "wrapping <list-id>",
	Short: "List purchased gifts that still need wrapping",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCore(cmd.Context(), func(ctx context.Context, c *core) error {
			groups, err := c.svc.Wrapping(ctx, args[0])
			if err != nil {
				return err
			}
			if jsonFlag {
				return printJSON(groups)
			}
			if len(groups) == 0 {
				fmt.Println("Everything is wrapped.")
				return nil
			}
			for _, g := range groups {
				fmt.Printf("%s\n", g.PersonName)
				for _, gift := range g.Gifts {
					fmt.Printf("  %s  %s  (%s)\n", gift.ID, truncate(gift.Description, 40), money(gift.Price))
				}
			}
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(totalsCmd, wrappingCmd)
}
