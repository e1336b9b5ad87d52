package cli

import (
	"github.com/spf13/cobra"
)

func (r *runner) shareCmd() *cobra.Command {
	var userID int64

	cmd := &cobra.Command{
		Use:   "share RECORDING_ID EMAIL",
		Short: "Re-encrypt a recording for another user and notify them",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			recID, err := parseID(args[0])
			if err != nil {
				return err
			}
			app, err := r.open(cmd)
			if err != nil {
				return err
			}

			stop := startSpinner(app.stderr, "Sharing recording...")
			grant, err := app.sharing.Share(cmd.Context(), recID, userID, args[1])
			stop()
			if err != nil {
				return err
			}

			success(app.stdout, "Shared recording %d with %s", recID, args[1])
			hint(app.stdout, "user %d can now run voicevault play %d --user %d", grant.TargetUserID, recID, grant.TargetUserID)
			return nil
		},
	}

	addUserFlag(cmd, &userID)
	return cmd
}

func (r *runner) deleteCmd() *cobra.Command {
	var userID int64

	cmd := &cobra.Command{
		Use:   "delete RECORDING_ID",
		Short: "Delete a recording you own",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recID, err := parseID(args[0])
			if err != nil {
				return err
			}
			app, err := r.open(cmd)
			if err != nil {
				return err
			}
			if err := app.lifecycle.Delete(cmd.Context(), recID, userID); err != nil {
				return err
			}
			success(app.stdout, "Deleted recording %d", recID)
			return nil
		},
	}

	addUserFlag(cmd, &userID)
	return cmd
}
