package cli

import (
	"context"
	"os"

	"tk/internal/ticket"

	flag "github.com/spf13/pflag"
)

// ShowCmd returns the show command.
func ShowCmd(a *app) *Command {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)

	return &Command{
		Flags: fs,
		Usage: "show <id>",
		Short: "Show raw ticket file",
		Long: `Print the stored ticket file verbatim.

The ID may be a unique substring of the full ID.`,
		Exec: func(_ context.Context, o *IO, args []string) error {
			if len(args) == 0 {
				return ticket.ErrIDRequired
			}

			id, resolveErr := a.store.Resolve(args[0])
			if resolveErr != nil {
				return resolveErr
			}

			content, readErr := os.ReadFile(ticket.Path(a.store.Dir, id))
			if readErr != nil {
				return readErr
			}

			o.Printf("%s", content)

			return nil
		},
	}
}
