package cli

import (
	"context"
	"errors"
	"fmt"

	"tk/internal/ticket"

	flag "github.com/spf13/pflag"
)

var errEmptyValue = errors.New("empty value not allowed")

// CreateCmd returns the create command.
func CreateCmd(a *app) *Command {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	fs.StringP("description", "d", "", "Description text")
	fs.String("design", "", "Design notes")
	fs.String("acceptance", "", "Acceptance criteria")
	fs.StringP("type", "t", ticket.TypeTask, "Type: bug|feature|task|epic|chore")
	fs.IntP("priority", "p", ticket.DefaultPriority, "Priority 0-4 (0=most urgent)")
	fs.StringP("assignee", "a", "", "Assignee name")
	fs.String("external-ref", "", "External reference (e.g. legacy issue ID)")
	fs.String("parent", "", "Parent ticket ID")

	return &Command{
		Flags: fs,
		Usage: "create <title> [flags]",
		Short: "Create ticket, prints ID",
		Long: `Create a new ticket. Prints the new ticket ID on success.

The assignee defaults to config.assignee, then git user.name.`,
		Exec: func(_ context.Context, o *IO, args []string) error {
			return execCreate(o, a, fs, args)
		},
	}
}

func execCreate(o *IO, a *app, fs *flag.FlagSet, args []string) error {
	title := ""
	if len(args) > 0 {
		title = args[0]
	}

	if title == "" {
		return ticket.ErrTitleRequired
	}

	// Reject flags explicitly set to empty values
	for _, name := range []string{"description", "design", "acceptance", "type", "assignee", "parent"} {
		v, _ := fs.GetString(name)
		if fs.Changed(name) && v == "" {
			return fmt.Errorf("%w: --%s", errEmptyValue, name)
		}
	}

	tkt := ticket.New(title)

	tkt.Type, _ = fs.GetString("type")
	tkt.Priority, _ = fs.GetInt("priority")
	tkt.Description, _ = fs.GetString("description")
	tkt.Design, _ = fs.GetString("design")
	tkt.Acceptance, _ = fs.GetString("acceptance")
	tkt.ExternalRef, _ = fs.GetString("external-ref")
	tkt.Parent, _ = fs.GetString("parent")

	assignee, _ := fs.GetString("assignee")
	if assignee == "" {
		assignee = defaultAssignee(a)
	}

	tkt.Assignee = assignee

	ticketID, createErr := a.store.Create(tkt)
	if createErr != nil {
		return createErr
	}

	o.Println(ticketID)

	return nil
}
