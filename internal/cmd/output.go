package cmd

import (
	"encoding/json"
	"fmt"
	"github.com/skybi/tenote/internal/entitlement"
	"github.com/skybi/tenote/internal/notes"
	"github.com/skybi/tenote/internal/session"
	"github.com/skybi/tenote/internal/tenant"
	"github.com/spf13/cobra"
	"io"
	"strings"
	"text/tabwriter"
)

type sessionView struct {
	Email        string              `json:"email"`
	Role         tenant.Role         `json:"role"`
	Tenant       *tenant.Tenant      `json:"tenant"`
	Subscription tenant.Subscription `json:"subscription"`
	Entitlements []string            `json:"entitlements,omitempty"`
	NoteCount    *int                `json:"note_count,omitempty"`
}

func newSessionView(current *session.Session) *sessionView {
	return &sessionView{
		Email:        current.Email,
		Role:         current.Role,
		Tenant:       current.Tenant,
		Subscription: current.EffectiveSubscription(),
	}
}

func (view *sessionView) withEntitlements(set entitlement.Set, count int) *sessionView {
	view.Entitlements = set.Names()
	view.NoteCount = &count
	return view
}

func (view *sessionView) writeText(out io.Writer) {
	fmt.Fprintf(out, "Email:        %s\n", orDash(view.Email))
	fmt.Fprintf(out, "Role:         %s\n", orDash(string(view.Role)))
	slug := ""
	if view.Tenant != nil {
		slug = view.Tenant.Slug
	}
	fmt.Fprintf(out, "Tenant:       %s\n", orDash(slug))
	fmt.Fprintf(out, "Subscription: %s\n", view.Subscription)
	if view.NoteCount != nil {
		fmt.Fprintf(out, "Notes:        %d\n", *view.NoteCount)
		fmt.Fprintf(out, "Entitlements: %s\n", orDash(strings.Join(view.Entitlements, ", ")))
	}
}

type messageView struct {
	Message string `json:"message"`
}

// print writes value as JSON if requested or falls back to the human readable representation
func (opts *rootOptions) print(command *cobra.Command, value any, human func(out io.Writer)) error {
	out := command.OutOrStdout()
	if opts.json {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(value)
	}
	human(out)
	return nil
}

func (opts *rootOptions) printMessage(command *cobra.Command, message string) error {
	return opts.print(command, &messageView{Message: message}, func(out io.Writer) {
		fmt.Fprintln(out, message)
	})
}

func writeNotes(out io.Writer, list []notes.Note) {
	if len(list) == 0 {
		fmt.Fprintln(out, "No notes yet.")
		return
	}
	writer := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "ID\tTITLE\tUPDATED")
	for _, note := range list {
		fmt.Fprintf(writer, "%s\t%s\t%s\n", note.ID, note.Title, orDash(note.UpdatedAt))
	}
	writer.Flush()
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
