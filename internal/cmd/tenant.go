package cmd

import (
	"fmt"
	"github.com/skybi/tenote/internal/tenant"
	"github.com/spf13/cobra"
	"io"
)

func newTenantCommand(opts *rootOptions) *cobra.Command {
	command := &cobra.Command{
		Use:   "tenant",
		Short: "Administrate your tenant (admins only)",
		RunE: func(command *cobra.Command, _ []string) error {
			return command.Help()
		},
	}
	command.AddCommand(
		newTenantUpgradeCommand(opts),
		newTenantInviteCommand(opts),
	)
	return command
}

func newTenantUpgradeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "upgrade",
		Short: "Upgrade your tenant to the pro plan",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			app, err := opts.application(command.Context())
			if err != nil {
				return err
			}
			current, err := app.Workspace.UpgradeTenant(command.Context())
			if err != nil {
				return notLoggedIn(err)
			}
			view := newSessionView(current)
			return opts.print(command, view, func(out io.Writer) {
				fmt.Fprintf(out, "Upgraded tenant %s to the pro plan.\n", current.TenantSlug())
			})
		},
	}
}

func newTenantInviteCommand(opts *rootOptions) *cobra.Command {
	var email, role string
	command := &cobra.Command{
		Use:   "invite",
		Short: "Invite a user into your tenant",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			app, err := opts.application(command.Context())
			if err != nil {
				return err
			}
			if err := app.Workspace.InviteUser(command.Context(), email, tenant.Role(role)); err != nil {
				return notLoggedIn(err)
			}
			return opts.printMessage(command, fmt.Sprintf("Invited %s as %s.", email, role))
		},
	}
	command.Flags().StringVar(&email, "email", "", "the email address of the user to invite")
	command.Flags().StringVar(&role, "role", string(tenant.RoleMember), "the role of the invited user (admin or member)")
	_ = command.MarkFlagRequired("email")
	return command
}
