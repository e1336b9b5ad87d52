package cli

import (
	"bytes"
	"os"

	"github.com/dmitrijs2005/voicevault/internal/audio"
	"github.com/dmitrijs2005/voicevault/internal/services"
	"github.com/spf13/cobra"
)

func (r *runner) playCmd() *cobra.Command {
	var (
		userID int64
		output string
	)

	cmd := &cobra.Command{
		Use:   "play RECORDING_ID",
		Short: "Decrypt a recording and write its PCM to stdout or a file",
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

			out := app.stdout
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}

			session := services.NewSession(userID, app.lifecycle, audio.NewReaderSource(bytes.NewReader(nil)), audio.NewWriterSink(out), app.log)
			pb, err := session.Play(cmd.Context(), recID)
			if err != nil {
				return err
			}

			// status goes to stderr when PCM is on stdout
			status := app.stderr
			if output != "" {
				status = app.stdout
			}
			if pb.Degraded {
				warn(status, "Audio for recording %d is unavailable, played %ds of silence", recID, pb.Recording.DurationSeconds)
				return nil
			}
			success(status, "Played recording %d %q", recID, pb.Recording.Name)
			return nil
		},
	}

	addUserFlag(cmd, &userID)
	cmd.Flags().StringVarP(&output, "output", "o", "", "write PCM to this file instead of stdout")
	return cmd
}
