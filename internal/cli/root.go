package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/dmitrijs2005/voicevault/internal/config"
	"github.com/spf13/cobra"
)

type runner struct {
	loader *config.Loader
	app    *App
}

// newRootCommand builds the voicevault command tree. Configuration flags are
// persistent, so every subcommand accepts them.
func newRootCommand() (*cobra.Command, *runner) {
	r := &runner{}

	root := &cobra.Command{
		Use:           "voicevault",
		Short:         "Record, play and share encrypted voice messages",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	r.loader = config.NewLoader(root.PersistentFlags())

	root.AddCommand(
		r.userCmd(),
		r.recordCmd(),
		r.playCmd(),
		r.shareCmd(),
		r.listCmd(),
		r.sharedCmd(),
		r.deleteCmd(),
		r.notificationsCmd(),
		r.readCmd(),
	)
	return root, r
}

// Execute runs the command tree with args and prints any error to stderr.
func Execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	root, r := newRootCommand()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	_, err := root.ExecuteContextC(ctx)
	err = errors.Join(err, r.close())
	if err != nil {
		printError(stderr, err)
	}
	return err
}

// open builds the App on first use. Commands that fail before calling it,
// such as on bad arguments, never touch the database.
func (r *runner) open(cmd *cobra.Command) (*App, error) {
	if r.app != nil {
		return r.app, nil
	}
	cfg, err := r.loader.Load()
	if err != nil {
		return nil, err
	}
	app, err := NewApp(cmd.Context(), cfg, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	r.app = app
	return app, nil
}

func (r *runner) close() error {
	if r.app == nil {
		return nil
	}
	err := r.app.Close()
	r.app = nil
	return err
}

func addUserFlag(cmd *cobra.Command, dst *int64) {
	cmd.Flags().Int64VarP(dst, "user", "u", 0, "id of the acting user")
	_ = cmd.MarkFlagRequired("user")
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
