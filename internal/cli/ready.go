package cli

import (
	"context"

	"tk/internal/ticket"

	flag "github.com/spf13/pflag"
)

// ReadyCmd returns the ready command.
func ReadyCmd(a *app) *Command {
	fs := flag.NewFlagSet("ready", flag.ContinueOnError)

	return &Command{
		Flags: fs,
		Usage: "ready",
		Short: "Tickets with all deps closed",
		Long: `List open and in_progress tickets whose direct dependencies are all
closed. Sorted by priority (0 first), ties by ID.`,
		Exec: func(_ context.Context, o *IO, _ []string) error {
			ready, _, err := classify(o, a)
			if err != nil {
				return err
			}

			for _, t := range ready {
				o.Println(formatTicketLine(t))
			}

			return nil
		},
	}
}

// BlockedCmd returns the blocked command.
func BlockedCmd(a *app) *Command {
	fs := flag.NewFlagSet("blocked", flag.ContinueOnError)

	return &Command{
		Flags: fs,
		Usage: "blocked",
		Short: "Tickets with unresolved deps",
		Long: `List open and in_progress tickets with at least one dependency that
is not closed. A dependency on a missing ticket also blocks.`,
		Exec: func(_ context.Context, o *IO, _ []string) error {
			_, blocked, err := classify(o, a)
			if err != nil {
				return err
			}

			for _, t := range blocked {
				o.Println(formatTicketLine(t))
			}

			return nil
		},
	}
}

func classify(o *IO, a *app) (ready, blocked []*ticket.Ticket, err error) {
	graph, err := loadGraph(o, a)
	if err != nil {
		return nil, nil, err
	}

	ready, blocked = graph.Classify()

	return ready, blocked, nil
}
