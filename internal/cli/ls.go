package cli

import (
	"context"
	"strings"

	"tk/internal/ticket"

	flag "github.com/spf13/pflag"
)

// LsCmd returns the ls command.
func LsCmd(a *app) *Command {
	fs := flag.NewFlagSet("ls", flag.ContinueOnError)
	fs.String("status", "", "Filter by status: open|in_progress|closed")

	return &Command{
		Flags: fs,
		Usage: "ls [--status=X]",
		Short: "List tickets",
		Long: `List all tickets, oldest first. Malformed ticket files are skipped
with a warning; they never abort the listing.`,
		Exec: func(_ context.Context, o *IO, args []string) error {
			statusFilter, _ := fs.GetString("status")
			if statusFilter != "" && !ticket.IsValidStatus(statusFilter) {
				return ticket.ErrInvalidStatus
			}

			results, err := a.store.List()
			if err != nil {
				return err
			}

			for _, res := range results {
				if res.Err != nil {
					o.Warn("skipping "+res.Path, res.Err.Error())

					continue
				}

				if statusFilter != "" && res.Ticket.Status != statusFilter {
					continue
				}

				o.Println(formatTicketLine(res.Ticket))
			}

			return nil
		},
	}
}

// formatTicketLine renders the one-line listing format shared by ls,
// ready, blocked, and closed.
func formatTicketLine(t *ticket.Ticket) string {
	var b strings.Builder

	b.WriteString(t.ID)
	b.WriteString(" [")
	b.WriteString(t.Status)
	b.WriteString("] P")
	b.WriteByte('0' + byte(t.Priority))
	b.WriteString(" ")
	b.WriteString(t.Title)

	if len(t.Deps) > 0 {
		b.WriteString(" (deps: ")
		b.WriteString(joinIDs(t.Deps))
		b.WriteString(")")
	}

	return b.String()
}

func joinIDs(ids []string) string {
	return strings.Join(ids, ", ")
}
