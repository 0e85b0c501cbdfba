package main

import (
	"context"
	"fmt"

	"github.com/andrewpark3412/gift-tracking/internal/household"
	"github.com/andrewpark3412/gift-tracking/internal/remote"
	"github.com/andrewpark3412/gift-tracking/internal/statusview"
	"github.com/spf13/cobra"
)

var (
	inviteHousehold string
	inviteBy        string
	inviteQR        bool
)

var inviteCmd = &cobra.Command{
	Use:   "invite",
	Short: "Invite people to a household",
}

var inviteAddCmd = &cobra.Command{
	Use:   "add <email>",
	Short: "Invite someone by email",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCore(cmd.Context(), func(ctx context.Context, c *core) error {
			inv, err := c.svc.InviteMember(ctx, inviteHousehold, args[0], inviteBy)
			if err != nil {
				return err
			}
			if jsonFlag {
				return printJSON(inv)
			}
			fmt.Printf("Invited %s (%s)\n", inv.InvitedEmail, inv.ID)
			if inv.Token == "" {
				fmt.Println("The invite link is available once the invite has synced.")
				return nil
			}
			return printInviteLink(c.cfg.AppURL, inv.Token)
		})
	},
}

var inviteLinkCmd = &cobra.Command{
	Use:   "link <token>",
	Short: "Print the accept link for an invite token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, cfg, err := loadSettings()
		if err != nil {
			return err
		}
		return printInviteLink(cfg.AppURL, args[0])
	},
}

func printInviteLink(appURL, token string) error {
	if appURL == "" {
		fmt.Printf("Invite token: %s (set app_url in config.toml for a link)\n", token)
		return nil
	}
	link, err := household.InviteLink(appURL, token)
	if err != nil {
		return err
	}
	fmt.Printf("Invite link: %s\n", link)
	if !inviteQR {
		return nil
	}
	qr, err := statusview.RenderQR(link)
	if err != nil {
		return fmt.Errorf("render qr: %w", err)
	}
	fmt.Print("\n" + qr)
	return nil
}

var inviteRevokeCmd = &cobra.Command{
	Use:   "revoke <id>",
	Short: "Revoke a pending invite",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runUpdate(cmd, func(ctx context.Context, c *core) (remote.Record, error) {
			return c.svc.RevokeInvite(ctx, args[0])
		})
	},
}

var memberCmd = &cobra.Command{
	Use:   "member",
	Short: "Manage household members",
}

var memberRmCmd = &cobra.Command{
	Use:   "rm <membership-id>",
	Short: "Remove a member from a household",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDelete(cmd, "removed member", args[0], func(ctx context.Context, c *core) error {
			return c.svc.RemoveMember(ctx, args[0])
		})
	},
}

func init() {
	inviteAddCmd.Flags().StringVar(&inviteHousehold, "household", "", "household id")
	inviteAddCmd.Flags().StringVar(&inviteBy, "by", "", "inviting user id")
	_ = inviteAddCmd.MarkFlagRequired("household")
	_ = inviteAddCmd.MarkFlagRequired("by")
	for _, c := range []*cobra.Command{inviteAddCmd, inviteLinkCmd} {
		c.Flags().BoolVar(&inviteQR, "qr", false, "also print the link as a QR code")
	}

	inviteCmd.AddCommand(inviteAddCmd, inviteRevokeCmd, inviteLinkCmd)
	memberCmd.AddCommand(memberRmCmd)
	rootCmd.AddCommand(inviteCmd, memberCmd)
}
