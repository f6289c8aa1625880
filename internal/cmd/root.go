// Package cmd implements the tenote command line interface
package cmd

import (
	"context"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	json bool
	open Opener
	app  *App
}

// NewRootCommand creates the tenote command tree.
// open is only invoked by commands that talk to the session or the notes API.
func NewRootCommand(open Opener) *cobra.Command {
	root, _ := newRoot(open)
	return root
}

func newRoot(open Opener) (*cobra.Command, *rootOptions) {
	opts := &rootOptions{open: open}

	root := &cobra.Command{
		Use:   "tenote",
		Short: "Multi-tenant notes client",
		Long: `tenote manages the notes of your tenant from the command line.

Log in once; the session is kept in the configured session store and confirmed
with the notes API whenever it is refreshed.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().BoolVar(&opts.json, "json", false, "print machine readable JSON")

	root.AddCommand(
		newLoginCommand(opts),
		newLogoutCommand(opts),
		newWhoamiCommand(opts),
		newSessionCommand(opts),
		newNotesCommand(opts),
		newTenantCommand(opts),
	)
	return root, opts
}

// ExecuteContext builds the command tree around open, runs it and closes the App afterwards
func ExecuteContext(ctx context.Context, open Opener) error {
	root, opts := newRoot(open)
	defer opts.close()
	return root.ExecuteContext(ctx)
}

func (opts *rootOptions) application(ctx context.Context) (*App, error) {
	if opts.app != nil {
		return opts.app, nil
	}
	app, err := opts.open(ctx)
	if err != nil {
		return nil, err
	}
	opts.app = app
	return app, nil
}

func (opts *rootOptions) close() {
	if opts.app != nil {
		opts.app.Close()
		opts.app = nil
	}
}
