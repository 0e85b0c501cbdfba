package main

import (
	"context"
	"fmt"

	"github.com/andrewpark3412/gift-tracking/internal/household"
	"github.com/andrewpark3412/gift-tracking/internal/remote"
	"github.com/spf13/cobra"
)

var (
	personList      string
	personName      string
	personBudget    float64
	personNoBudget  bool
	personCompleted bool
)

var personCmd = &cobra.Command{
	Use:   "person",
	Short: "Add, change and remove people on a list",
}

var personAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a person to a list",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		in := household.NewPerson{ListID: personList, Name: personName}
		if cmd.Flags().Changed("budget") {
			in.Budget = &personBudget
		}
		return withCore(cmd.Context(), func(ctx context.Context, c *core) error {
			p, err := c.svc.CreatePerson(ctx, in)
			if err != nil {
				return err
			}
			if jsonFlag {
				return printJSON(p)
			}
			fmt.Printf("Added %s (%s), budget %s\n", p.Name, p.ID, optMoney(p.Budget))
			return nil
		})
	},
}

var personUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change a person",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var u household.PersonUpdate
		flags := cmd.Flags()
		if flags.Changed("name") {
			u.Name = &personName
		}
		if flags.Changed("budget") {
			u.Budget = &personBudget
		}
		u.ClearBudget = personNoBudget
		if flags.Changed("completed") {
			u.IsManuallyCompleted = &personCompleted
		}
		return runUpdate(cmd, func(ctx context.Context, c *core) (remote.Record, error) {
			return c.svc.UpdatePerson(ctx, args[0], u)
		})
	},
}

var personRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Remove a person",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDelete(cmd, "removed person", args[0], func(ctx context.Context, c *core) error {
			return c.svc.DeletePerson(ctx, args[0])
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{personAddCmd, personUpdateCmd} {
		c.Flags().StringVar(&personName, "name", "", "person's name")
		c.Flags().Float64Var(&personBudget, "budget", 0, "spending budget")
	}
	personAddCmd.Flags().StringVar(&personList, "list", "", "list id")
	_ = personAddCmd.MarkFlagRequired("list")
	_ = personAddCmd.MarkFlagRequired("name")
	personUpdateCmd.Flags().BoolVar(&personNoBudget, "no-budget", false, "remove the budget")
	personUpdateCmd.Flags().BoolVar(&personCompleted, "completed", false, "mark shopping done for this person")
	personUpdateCmd.MarkFlagsMutuallyExclusive("budget", "no-budget")

	personCmd.AddCommand(personAddCmd, personUpdateCmd, personRmCmd)
	rootCmd.AddCommand(personCmd)
}
