package cli

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/voicevault/internal/audio"
	"github.com/dmitrijs2005/voicevault/internal/services"
	"github.com/spf13/cobra"
)

// stopGrace bounds the wait for a read that Close does not interrupt.
const stopGrace = 500 * time.Millisecond

func (r *runner) recordCmd() *cobra.Command {
	var (
		userID int64
		name   string
		input  string
	)

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Capture raw PCM from stdin or a file and store it encrypted",
		Long: "Capture 16-bit mono PCM at 44.1 kHz until the input ends or the command is " +
			"interrupted, then encrypt and store it. After an interrupt, input that has not " +
			"arrived within a short grace period is dropped.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := r.open(cmd)
			if err != nil {
				return err
			}

			var in io.Reader = cmd.InOrStdin()
			if input != "" {
				f, err := os.Open(input)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			src := audio.NewReaderSource(in)
			src.StopGrace = stopGrace
			session := services.NewSession(userID, app.lifecycle, src, audio.NewWriterSink(io.Discard), app.log)

			ctx := cmd.Context()
			if err := session.StartCapture(ctx, name); err != nil {
				return err
			}
			select {
			case <-src.Done():
			case <-ctx.Done():
			}

			stop := startSpinner(app.stderr, "Encrypting recording...")
			rec, err := session.StopCapture(context.WithoutCancel(ctx))
			stop()
			if err != nil {
				return err
			}
			if rec == nil {
				warn(app.stdout, "Nothing was captured, no recording stored")
				return nil
			}

			success(app.stdout, "Stored recording %d %q (%ds)", rec.ID, rec.Name, rec.DurationSeconds)
			return nil
		},
	}

	addUserFlag(cmd, &userID)
	cmd.Flags().StringVarP(&name, "name", "n", "", "recording name")
	cmd.Flags().StringVarP(&input, "input", "i", "", "read PCM from this file instead of stdin")
	return cmd
}
