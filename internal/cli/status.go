package cli

import (
	"context"
	"errors"

	"tk/internal/ticket"

	flag "github.com/spf13/pflag"
)

var errStatusRequired = errors.New("status is required")

// StartCmd returns the start command.
func StartCmd(a *app) *Command {
	return statusVerbCmd(a, "start", ticket.StatusInProgress, "Set status to in_progress")
}

// CloseCmd returns the close command.
func CloseCmd(a *app) *Command {
	return statusVerbCmd(a, "close", ticket.StatusClosed, "Set status to closed")
}

// ReopenCmd returns the reopen command.
func ReopenCmd(a *app) *Command {
	return statusVerbCmd(a, "reopen", ticket.StatusOpen, "Set status to open")
}

// statusVerbCmd builds one of the named status transitions. Each verb is
// permitted from any current status; re-applying the current status is a
// harmless no-op.
func statusVerbCmd(a *app, verb, status, short string) *Command {
	fs := flag.NewFlagSet(verb, flag.ContinueOnError)

	return &Command{
		Flags: fs,
		Usage: verb + " <id>",
		Short: short,
		Exec: func(_ context.Context, o *IO, args []string) error {
			return execSetStatus(o, a, args, status)
		},
	}
}

// StatusCmd returns the generic status setter.
func StatusCmd(a *app) *Command {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)

	return &Command{
		Flags: fs,
		Usage: "status <id> <status>",
		Short: "Set status to any valid value",
		Long:  `Set the ticket status directly. Valid values: open, in_progress, closed.`,
		Exec: func(_ context.Context, o *IO, args []string) error {
			if len(args) < 1 {
				return ticket.ErrIDRequired
			}

			if len(args) < 2 {
				return errStatusRequired
			}

			return execSetStatus(o, a, args, args[1])
		},
	}
}

func execSetStatus(o *IO, a *app, args []string, status string) error {
	if len(args) == 0 {
		return ticket.ErrIDRequired
	}

	id, resolveErr := a.store.Resolve(args[0])
	if resolveErr != nil {
		return resolveErr
	}

	statusErr := a.store.SetStatus(id, status)
	if statusErr != nil {
		return statusErr
	}

	o.Println(id, status)

	return nil
}
