package cmd

import (
	"fmt"
	"github.com/skybi/tenote/internal/entitlement"
	"github.com/skybi/tenote/internal/notes"
	"github.com/spf13/cobra"
	"io"
)

type notesView struct {
	Notes         []notes.Note `json:"notes"`
	UpgradeBanner bool         `json:"upgrade_banner"`
	CanWrite      bool         `json:"can_write"`
}

func newNotesCommand(opts *rootOptions) *cobra.Command {
	command := &cobra.Command{
		Use:   "notes",
		Short: "Manage the notes of your tenant",
		RunE: func(command *cobra.Command, _ []string) error {
			return command.Help()
		},
	}
	command.AddCommand(
		newNotesListCommand(opts),
		newNotesCreateCommand(opts),
		newNotesEditCommand(opts),
		newNotesDeleteCommand(opts),
	)
	return command
}

func newNotesListCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all notes of your tenant",
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
			view := &notesView{
				Notes:         dashboard.Notes,
				UpgradeBanner: dashboard.Entitlements.Has(entitlement.UpgradeBanner),
				CanWrite:      dashboard.Entitlements.Has(entitlement.WriteNote),
			}
			return opts.print(command, view, func(out io.Writer) {
				writeNotes(out, view.Notes)
				if view.UpgradeBanner {
					fmt.Fprintf(out, "\nYour tenant reached the free plan limit of %d notes. Ask an admin to upgrade to pro.\n", entitlement.FreeNoteLimit)
				}
			})
		},
	}
}

func newNotesCreateCommand(opts *rootOptions) *cobra.Command {
	var title, content string
	command := &cobra.Command{
		Use:   "create",
		Short: "Create a new note",
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			app, err := opts.application(command.Context())
			if err != nil {
				return err
			}
			note, err := app.Workspace.CreateNote(command.Context(), title, content)
			if err != nil {
				return notLoggedIn(err)
			}
			return opts.print(command, note, func(out io.Writer) {
				fmt.Fprintf(out, "Created note %s.\n", note.ID)
			})
		},
	}
	command.Flags().StringVar(&title, "title", "", "the title of the note")
	command.Flags().StringVar(&content, "content", "", "the content of the note")
	return command
}

func newNotesEditCommand(opts *rootOptions) *cobra.Command {
	var title, content string
	command := &cobra.Command{
		Use:   "edit <id>",
		Short: "Replace the title and content of a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			app, err := opts.application(command.Context())
			if err != nil {
				return err
			}
			note, err := app.Workspace.UpdateNote(command.Context(), args[0], title, content)
			if err != nil {
				return notLoggedIn(err)
			}
			return opts.print(command, note, func(out io.Writer) {
				fmt.Fprintf(out, "Updated note %s.\n", note.ID)
			})
		},
	}
	command.Flags().StringVar(&title, "title", "", "the new title of the note")
	command.Flags().StringVar(&content, "content", "", "the new content of the note")
	return command
}

func newNotesDeleteCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, args []string) error {
			app, err := opts.application(command.Context())
			if err != nil {
				return err
			}
			if err := app.Workspace.DeleteNote(command.Context(), args[0]); err != nil {
				return notLoggedIn(err)
			}
			return opts.printMessage(command, fmt.Sprintf("Deleted note %s.", args[0]))
		},
	}
}
