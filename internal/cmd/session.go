package cmd

import (
	"context"
	"errors"
	"fmt"
	"github.com/rs/zerolog/log"
	"github.com/skybi/tenote/internal/task"
	"github.com/spf13/cobra"
	"time"
)

func newSessionCommand(opts *rootOptions) *cobra.Command {
	command := &cobra.Command{
		Use:   "session",
		Short: "Confirm the stored session with the notes API",
		RunE: func(command *cobra.Command, _ []string) error {
			return command.Help()
		},
	}
	command.AddCommand(
		newSessionRefreshCommand(opts),
		newSessionWatchCommand(opts),
	)
	return command
}

func newSessionRefreshCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Reload role and tenant from the notes API",
		Long: `Reload role and tenant from the notes API.

If the notes API no longer accepts the stored token the session is cleared.`,
		Args: cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			app, err := opts.application(command.Context())
			if err != nil {
				return err
			}
			state := app.Workspace.State
			if state.Current() == nil {
				return errNotLoggedIn
			}
			if err := state.Refresh(command.Context()); err != nil {
				return refreshFailed(command.Context(), err)
			}
			current := state.Current()
			if current == nil {
				return errNotLoggedIn
			}
			view := newSessionView(current)
			return opts.print(command, view, view.writeText)
		},
	}
}

func newSessionWatchCommand(opts *rootOptions) *cobra.Command {
	var interval time.Duration
	command := &cobra.Command{
		Use:   "watch",
		Short: "Periodically refresh the session until interrupted",
		Long: `Periodically refresh the session until interrupted.

The command fails as soon as the notes API rejects the session.`,
		Args: cobra.NoArgs,
		RunE: func(command *cobra.Command, _ []string) error {
			ctx := command.Context()
			app, err := opts.application(ctx)
			if err != nil {
				return err
			}
			state := app.Workspace.State
			if state.Current() == nil {
				return errNotLoggedIn
			}
			if interval <= 0 {
				interval = app.watchInterval()
			}

			failures := make(chan error, 1)
			refreshing := task.NewRepeating(func(ctx context.Context) {
				err := state.Refresh(ctx)
				if ctx.Err() != nil {
					return
				}
				current := state.Current()
				if err == nil && current == nil {
					err = errNotLoggedIn
				}
				if err != nil {
					select {
					case failures <- err:
					default:
					}
					return
				}
				log.Info().Str("role", string(current.Role)).Str("tenant", current.TenantSlug()).Str("subscription", string(current.EffectiveSubscription())).Msg("session confirmed")
			}, interval)
			refreshing.Start(ctx)
			defer refreshing.Stop(ctx, false)

			log.Info().Dur("interval", interval).Msg("watching the session")
			select {
			case <-ctx.Done():
				return nil
			case err := <-failures:
				return refreshFailed(ctx, err)
			}
		},
	}
	command.Flags().DurationVar(&interval, "interval", 0, "the refresh interval (defaults to TENOTE_WATCH_INTERVAL)")
	return command
}


// refreshFailed describes a failed refresh; an interrupted refresh leaves the session in place
func refreshFailed(ctx context.Context, err error) error {
	if ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		return fmt.Errorf("session refresh interrupted: %w", err)
	}
	if errors.Is(err, errNotLoggedIn) {
		return err
	}
	return fmt.Errorf("session is no longer valid and was cleared: %w", err)
}
