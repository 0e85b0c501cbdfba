package main

import (
	"context"
	"fmt"

	"github.com/andrewpark3412/gift-tracking/internal/household"
	"github.com/andrewpark3412/gift-tracking/internal/remote"
	"github.com/spf13/cobra"
)

var (
	giftPerson      string
	giftDescription string
	giftPrice       float64
	giftStatus      string
	giftWrapped     bool
	giftNotes       string
	giftUnwrap      bool
)

var giftCmd = &cobra.Command{
	Use:   "gift",
	Short: "Add, change and remove gifts",
}

var giftAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a gift for a person",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		in := household.NewGift{
			PersonID:    giftPerson,
			Description: giftDescription,
			Price:       giftPrice,
			Status:      household.GiftStatus(giftStatus),
			IsWrapped:   giftWrapped,
		}
		if cmd.Flags().Changed("notes") {
			in.Notes = &giftNotes
		}
		return withCore(cmd.Context(), func(ctx context.Context, c *core) error {
			gift, err := c.svc.CreateGift(ctx, in)
			if err != nil {
				return err
			}
			if jsonFlag {
				return printJSON(gift)
			}
			fmt.Printf("Added gift %s (%s, %s)\n", gift.ID, gift.Description, money(gift.Price))
			if gift.Unconfirmed() {
				fmt.Println("Queued offline; it will sync when the connection returns.")
			}
			return nil
		})
	},
}

var giftUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change a gift",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var u household.GiftUpdate
		flags := cmd.Flags()
		if flags.Changed("description") {
			u.Description = &giftDescription
		}
		if flags.Changed("price") {
			u.Price = &giftPrice
		}
		if flags.Changed("status") {
			s := household.GiftStatus(giftStatus)
			u.Status = &s
		}
		if flags.Changed("wrapped") {
			u.IsWrapped = &giftWrapped
		}
		if flags.Changed("notes") {
			u.Notes = &giftNotes
		}
		return runUpdate(cmd, func(ctx context.Context, c *core) (remote.Record, error) {
			return c.svc.UpdateGift(ctx, args[0], u)
		})
	},
}

var giftWrapCmd = &cobra.Command{
	Use:   "wrap <id>",
	Short: "Mark a gift as wrapped",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runUpdate(cmd, func(ctx context.Context, c *core) (remote.Record, error) {
			return c.svc.SetGiftWrapped(ctx, args[0], !giftUnwrap)
		})
	},
}

var giftRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Remove a gift",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDelete(cmd, "removed gift", args[0], func(ctx context.Context, c *core) error {
			return c.svc.DeleteGift(ctx, args[0])
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{giftAddCmd, giftUpdateCmd} {
		c.Flags().StringVar(&giftDescription, "description", "", "what the gift is")
		c.Flags().Float64Var(&giftPrice, "price", 0, "price")
		c.Flags().StringVar(&giftStatus, "status", "", "idea or purchased")
		c.Flags().BoolVar(&giftWrapped, "wrapped", false, "already wrapped")
		c.Flags().StringVar(&giftNotes, "notes", "", "free-form notes (empty clears)")
	}
	giftAddCmd.Flags().StringVar(&giftPerson, "person", "", "person id")
	_ = giftAddCmd.MarkFlagRequired("person")
	_ = giftAddCmd.MarkFlagRequired("description")
	giftWrapCmd.Flags().BoolVar(&giftUnwrap, "undo", false, "mark as not wrapped")

	giftCmd.AddCommand(giftAddCmd, giftUpdateCmd, giftWrapCmd, giftRmCmd)
	rootCmd.AddCommand(giftCmd)
}

// runUpdate runs an update and prints the record it produced.
func runUpdate(cmd *cobra.Command, fn func(ctx context.Context, c *core) (remote.Record, error)) error {
	return withCore(cmd.Context(), func(ctx context.Context, c *core) error {
		rec, err := fn(ctx, c)
		if err != nil {
			return err
		}
		if !jsonFlag && !c.monitor.IsOnline() {
			fmt.Println("Offline: change queued.")
		}
		return printRecord(rec)
	})
}

// runDelete runs a delete and confirms it.
func runDelete(cmd *cobra.Command, what, id string, fn func(ctx context.Context, c *core) error) error {
	return withCore(cmd.Context(), func(ctx context.Context, c *core) error {
		if err := fn(ctx, c); err != nil {
			return err
		}
		if !c.monitor.IsOnline() {
			what += " (queued offline)"
		}
		return printDone(what, id)
	})
}
