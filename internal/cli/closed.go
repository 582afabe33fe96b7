package cli

import (
	"context"
	"errors"
	"slices"

	"tk/internal/ticket"

	flag "github.com/spf13/pflag"
)

const defaultClosedLimit = 20

var errInvalidLimit = errors.New("limit must be positive")

// ClosedCmd returns the closed command.
func ClosedCmd(a *app) *Command {
	fs := flag.NewFlagSet("closed", flag.ContinueOnError)
	fs.Int("limit", defaultClosedLimit, "Maximum number of tickets to show")

	return &Command{
		Flags: fs,
		Usage: "closed [--limit=N]",
		Short: "Recently closed tickets",
		Long:  `List closed tickets, most recently modified first.`,
		Exec: func(_ context.Context, o *IO, _ []string) error {
			limit, _ := fs.GetInt("limit")
			if limit <= 0 {
				return errInvalidLimit
			}

			results, err := a.store.List()
			if err != nil {
				return err
			}

			var closed []ticket.Result

			for _, res := range results {
				if res.Err != nil {
					o.Warn("skipping "+res.Path, res.Err.Error())

					continue
				}

				if res.Ticket.Status == ticket.StatusClosed {
					closed = append(closed, res)
				}
			}

			// Most recently touched first; file mtime tracks the close.
			slices.SortFunc(closed, func(x, y ticket.Result) int {
				return y.ModTime.Compare(x.ModTime)
			})

			if len(closed) > limit {
				closed = closed[:limit]
			}

			for _, res := range closed {
				o.Println(formatTicketLine(res.Ticket))
			}

			return nil
		},
	}
}
