package cli

import (
	"context"
	"errors"

	"tk/internal/ticket"

	flag "github.com/spf13/pflag"
)

var errUnlinkNeedsTwoIDs = errors.New("unlink requires exactly two ticket IDs")

// LinkCmd returns the link command.
func LinkCmd(a *app) *Command {
	fs := flag.NewFlagSet("link", flag.ContinueOnError)

	return &Command{
		Flags: fs,
		Usage: "link <id> <id>...",
		Short: "Link tickets (symmetric)",
		Long: `Link two or more tickets. Every pair among the arguments gets a
mutual link. All tickets must exist; linking already-linked tickets
is a no-op.`,
		Exec: func(_ context.Context, o *IO, args []string) error {
			if len(args) < 2 {
				return ticket.ErrLinkNeedsTwoIDs
			}

			ids := make([]string, 0, len(args))

			for _, arg := range args {
				id, resolveErr := a.store.Resolve(arg)
				if resolveErr != nil {
					return resolveErr
				}

				ids = append(ids, id)
			}

			linkErr := a.store.Link(ids)
			if linkErr != nil {
				return linkErr
			}

			o.Println("linked:", joinIDs(ids))

			return nil
		},
	}
}

// UnlinkCmd returns the unlink command.
func UnlinkCmd(a *app) *Command {
	fs := flag.NewFlagSet("unlink", flag.ContinueOnError)

	return &Command{
		Flags: fs,
		Usage: "unlink <id> <id>",
		Short: "Remove link",
		Long:  `Remove the mutual link between two tickets. Other links are untouched.`,
		Exec: func(_ context.Context, o *IO, args []string) error {
			if len(args) != 2 {
				return errUnlinkNeedsTwoIDs
			}

			first, firstErr := a.store.Resolve(args[0])
			if firstErr != nil {
				return firstErr
			}

			second, secondErr := a.store.Resolve(args[1])
			if secondErr != nil {
				return secondErr
			}

			unlinkErr := a.store.Unlink(first, second)
			if unlinkErr != nil {
				return unlinkErr
			}

			o.Println("unlinked:", first, second)

			return nil
		},
	}
}
