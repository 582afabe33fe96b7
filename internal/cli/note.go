package cli

import (
	"context"
	"io"
	"os"
	"strings"

	"tk/internal/ticket"

	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"
)

// AddNoteCmd returns the add-note command.
func AddNoteCmd(a *app) *Command {
	fs := flag.NewFlagSet("add-note", flag.ContinueOnError)

	return &Command{
		Flags: fs,
		Usage: "add-note <id> [text]",
		Short: "Append timestamped note",
		Long: `Append a timestamped note to a ticket. Notes are append-only.

The note text comes from the argument, from piped stdin, or from an
interactive prompt when run on a terminal.`,
		Exec: func(_ context.Context, o *IO, args []string) error {
			if len(args) == 0 {
				return ticket.ErrIDRequired
			}

			id, resolveErr := a.store.Resolve(args[0])
			if resolveErr != nil {
				return resolveErr
			}

			text, textErr := noteText(o, args[1:])
			if textErr != nil {
				return textErr
			}

			noteErr := a.store.AddNote(id, text)
			if noteErr != nil {
				return noteErr
			}

			o.Println("noted", id)

			return nil
		},
	}
}

// noteText gathers the note body: argument text wins, then piped stdin,
// then an interactive line prompt.
func noteText(o *IO, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}

	if o.In == os.Stdin && liner.TerminalSupported() {
		return promptNote()
	}

	if o.In == nil {
		return "", ticket.ErrNoteTextRequired
	}

	data, readErr := io.ReadAll(o.In)
	if readErr != nil {
		return "", readErr
	}

	return strings.TrimRight(string(data), "\n"), nil
}

func promptNote() (string, error) {
	l := liner.NewLiner()
	defer func() { _ = l.Close() }()

	l.SetCtrlCAborts(true)

	text, promptErr := l.Prompt("note> ")
	if promptErr != nil {
		return "", promptErr
	}

	return text, nil
}
