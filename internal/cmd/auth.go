package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"github.com/skybi/tenote/internal/remote"
	"github.com/spf13/cobra"
	"io"
	"strings"
)

var (
	errNotLoggedIn     = errors.New("not logged in; run 'tenote login' first")
	errNoStdinPassword = errors.New("no password given on stdin")
)

func newLoginCommand(opts *rootOptions) *cobra.Command {
	var email, password string
	var passwordStdin bool
	command := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			if passwordStdin {
				read, err := readPassword(command.InOrStdin())
				if err != nil {
					return err
				}
				password = read
			}
			app, err := opts.application(command.Context())
			if err != nil {
				return err
			}
			current, err := app.Workspace.Login(command.Context(), email, password)
			if err != nil {
				return err
			}
			view := newSessionView(current)
			return opts.print(command, view, func(out io.Writer) {
				fmt.Fprintf(out, "Logged in as %s.\n", current.Email)
				view.writeText(out)
			})
		},
	}
	command.Flags().StringVar(&email, "email", "", "the email address to log in with")
	command.Flags().StringVar(&password, "password", "", "the password to log in with (visible to other processes; prefer --password-stdin)")
	command.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from the first line of stdin")
	_ = command.MarkFlagRequired("email")
	command.MarkFlagsOneRequired("password", "password-stdin")
	command.MarkFlagsMutuallyExclusive("password", "password-stdin")
	return command
}

// readPassword reads the first line of in without its line ending
func readPassword(in io.Reader) (string, error) {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errNoStdinPassword
	}
	return line, nil
}

func newLogoutCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			app, err := opts.application(command.Context())
			if err != nil {
				return err
			}
			if err := app.Workspace.Logout(command.Context()); err != nil {
				return err
			}
			return opts.printMessage(command, "Logged out.")
		},
	}
}

func newWhoamiCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session and what it is entitled to",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			app, err := opts.application(command.Context())
			if err != nil {
				return err
			}
			dashboard, err := app.Workspace.Dashboard(command.Context())
			if err != nil {
				return notLoggedIn(err)
			}
			view := newSessionView(dashboard.Session).withEntitlements(dashboard.Entitlements, len(dashboard.Notes))
			return opts.print(command, view, view.writeText)
		},
	}
}

// notLoggedIn replaces the missing session error with a hint on how to get one
func notLoggedIn(err error) error {
	if errors.Is(err, remote.ErrNotAuthenticated) {
		return errNotLoggedIn
	}
	return err
}
