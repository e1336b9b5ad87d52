package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

const timeLayout = time.DateTime

func (r *runner) listCmd() *cobra.Command {
	var userID int64

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List your recordings, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := r.open(cmd)
			if err != nil {
				return err
			}
			recs, err := app.lifecycle.List(cmd.Context(), userID)
			if err != nil {
				return err
			}
			if len(recs) == 0 {
				fmt.Fprintln(app.stdout, "No recordings")
				return nil
			}

			tw := tabwriter.NewWriter(app.stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tDURATION\tCREATED")
			for _, rec := range recs {
				fmt.Fprintf(tw, "%d\t%s\t%ds\t%s\n", rec.ID, rec.Name, rec.DurationSeconds, rec.CreatedAt.Local().Format(timeLayout))
			}
			return tw.Flush()
		},
	}

	addUserFlag(cmd, &userID)
	return cmd
}

func (r *runner) sharedCmd() *cobra.Command {
	var userID int64

	cmd := &cobra.Command{
		Use:   "shared",
		Short: "List recordings shared with you",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := r.open(cmd)
			if err != nil {
				return err
			}
			grants, err := app.lifecycle.ListShared(cmd.Context(), userID)
			if err != nil {
				return err
			}
			if len(grants) == 0 {
				fmt.Fprintln(app.stdout, "Nothing shared with you")
				return nil
			}

			tw := tabwriter.NewWriter(app.stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "RECORDING\tNAME\tFROM\tSHARED")
			for _, g := range grants {
				from, err := app.directory.GetEmail(cmd.Context(), g.SourceUserID)
				if err != nil {
					from = fmt.Sprintf("user %d", g.SourceUserID)
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", g.RecordingID, g.RecordingName, from, g.SharedAt.Local().Format(timeLayout))
			}
			return tw.Flush()
		},
	}

	addUserFlag(cmd, &userID)
	return cmd
}
