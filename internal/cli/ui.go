package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/dmitrijs2005/voicevault/internal/common"
	"github.com/fatih/color"
)

func success(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, color.GreenString("✓")+" "+fmt.Sprintf(format, args...))
}

func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, color.YellowString("!")+" "+fmt.Sprintf(format, args...))
}

func hint(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, color.CyanString("→")+" "+fmt.Sprintf(format, args...))
}

// printError writes err and, for the failures a user can act on, a hint.
func printError(w io.Writer, err error) {
	fmt.Fprintln(w, color.RedString("✗")+" "+err.Error())

	switch {
	case errors.Is(err, common.ErrRecipientNotFound):
		hint(w, "%s", "the recipient must first run "+color.YellowString("voicevault user add EMAIL"))
	case errors.Is(err, common.ErrRecipientKeyMissing):
		hint(w, "the recipient has no key pair yet; registering again creates one")
	case errors.Is(err, common.ErrNotOwner):
		hint(w, "only the owner can share or delete a recording")
	case errors.Is(err, common.ErrAccessDenied):
		hint(w, "ask the owner to share the recording with you")
	case errors.Is(err, common.ErrStorageUnavailable):
		hint(w, "check the blob storage settings")
	}
}

// startSpinner shows a spinner on w while a slow step runs. The returned
// function stops it. Nothing is drawn unless w is a terminal.
func startSpinner(w io.Writer, message string) func() {
	f, ok := w.(*os.File)
	if !ok {
		return func() {}
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriterFile(f))
	s.Suffix = " " + message
	_ = s.Color("cyan")
	s.Start()
	return s.Stop
}
