package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func (r *runner) notificationsCmd() *cobra.Command {
	var (
		userID int64
		unread bool
	)

	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "Show your notifications, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := r.open(cmd)
			if err != nil {
				return err
			}
			list, err := app.notifications.List(cmd.Context(), userID)
			if err != nil {
				return err
			}

			shown := 0
			for _, n := range list {
				if unread && n.IsRead {
					continue
				}
				mark := " "
				if !n.IsRead {
					mark = color.CyanString("*")
				}
				fmt.Fprintf(app.stdout, "%s %d  %s  %s\n", mark, n.ID, n.CreatedAt.Local().Format(timeLayout), n.Message)
				shown++
			}
			if shown == 0 {
				fmt.Fprintln(app.stdout, "No notifications")
			}
			return nil
		},
	}

	addUserFlag(cmd, &userID)
	cmd.Flags().BoolVar(&unread, "unread", false, "show only unread notifications")
	return cmd
}

func (r *runner) readCmd() *cobra.Command {
	var userID int64

	cmd := &cobra.Command{
		Use:   "read NOTIFICATION_ID",
		Short: "Mark a notification as read",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			app, err := r.open(cmd)
			if err != nil {
				return err
			}
			if err := app.notifications.MarkRead(cmd.Context(), id, userID); err != nil {
				return err
			}
			success(app.stdout, "Notification %d marked as read", id)
			return nil
		},
	}

	addUserFlag(cmd, &userID)
	return cmd
}
