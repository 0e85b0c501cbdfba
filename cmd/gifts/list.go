package main

import (
	"context"
	"fmt"

	"github.com/andrewpark3412/gift-tracking/internal/household"
	"github.com/andrewpark3412/gift-tracking/internal/remote"
	"github.com/spf13/cobra"
)

var (
	listHousehold  string
	listOwner      string
	listName       string
	listYear       int
	listVisibility string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Add, change and remove gift lists",
}

var listAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a gift list",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		in := household.NewList{
			HouseholdID: listHousehold,
			OwnerUserID: listOwner,
			Name:        listName,
			Year:        listYear,
			Visibility:  household.ListVisibility(listVisibility),
		}
		return withCore(cmd.Context(), func(ctx context.Context, c *core) error {
			l, err := c.svc.CreateList(ctx, in)
			if err != nil {
				return err
			}
			if jsonFlag {
				return printJSON(l)
			}
			fmt.Printf("Created list %s %q (%d, %s)\n", l.ID, l.Name, l.Year, l.Visibility)
			return nil
		})
	},
}

var listUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change a gift list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var u household.ListUpdate
		flags := cmd.Flags()
		if flags.Changed("name") {
			u.Name = &listName
		}
		if flags.Changed("year") {
			u.Year = &listYear
		}
		if flags.Changed("visibility") {
			v := household.ListVisibility(listVisibility)
			u.Visibility = &v
		}
		return runUpdate(cmd, func(ctx context.Context, c *core) (remote.Record, error) {
			return c.svc.UpdateList(ctx, args[0], u)
		})
	},
}

var listRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a gift list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDelete(cmd, "deleted list", args[0], func(ctx context.Context, c *core) error {
			return c.svc.DeleteList(ctx, args[0])
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{listAddCmd, listUpdateCmd} {
		c.Flags().StringVar(&listName, "name", "", "list name")
		c.Flags().IntVar(&listYear, "year", 0, "year the list is for")
		c.Flags().StringVar(&listVisibility, "visibility", "", "household or private")
	}
	listAddCmd.Flags().StringVar(&listHousehold, "household", "", "household id")
	listAddCmd.Flags().StringVar(&listOwner, "owner", "", "owner user id")
	for _, f := range []string{"household", "owner", "name", "year"} {
		_ = listAddCmd.MarkFlagRequired(f)
	}

	listCmd.AddCommand(listAddCmd, listUpdateCmd, listRmCmd)
	rootCmd.AddCommand(listCmd)
}
