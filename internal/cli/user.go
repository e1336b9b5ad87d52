package cli

import (
	"github.com/spf13/cobra"
)

func (r *runner) userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage users",
	}
	cmd.AddCommand(r.userAddCmd())
	return cmd
}

func (r *runner) userAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add EMAIL",
		Short: "Register a user and create their key pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := r.open(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			stop := startSpinner(app.stderr, "Generating key pair...")
			id, err := app.directory.Register(ctx, args[0])
			if err == nil {
				_, err = app.keys.GetOrCreateKeyPair(ctx, id)
			}
			stop()
			if err != nil {
				return err
			}

			success(app.stdout, "User %s registered with id %d", args[0], id)
			return nil
		},
	}
}
