package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"agenda/internal/reminder"
)

func newRemindCmd(a *app, opts *rootOptions) *cobra.Command {
	var once bool
	cmd := &cobra.Command{
		Use:   "remind",
		Short: "Log in and print reminders for tasks due tomorrow",
		Long: `Remind logs in and stays in the foreground, printing each task due
tomorrow once. It checks again every reminder interval until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if once {
				user, err := a.login(cmd, opts)
				if err != nil {
					return err
				}
				sent, err := reminder.New(user, a.agenda.TaskLister(), nil, reminder.WithLogger(a.logger)).Tick(ctx)
				if err != nil {
					return err
				}
				for _, n := range sent {
					fmt.Fprintln(out, n)
				}
				return nil
			}

			user, password, err := a.credentials(cmd, opts)
			if err != nil {
				return err
			}
			s, err := a.sessions.Login(ctx, user, password)
			if err != nil {
				return err
			}
			defer s.Logout()

			interval := s.Scheduler().Interval()
			fmt.Fprintf(out, "Watching %s's tasks every %s. Press Ctrl+C to stop.\n", user, interval)
			for {
				select {
				case n := <-s.Notifications():
					fmt.Fprintln(out, n)
				case <-ctx.Done():
					return nil
				}
			}
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "Check once and exit")
	return cmd
}
