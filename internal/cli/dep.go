package cli

import (
	"context"
	"errors"

	"tk/internal/ticket"

	flag "github.com/spf13/pflag"
)

var errDepIDRequired = errors.New("dependency ticket ID is required")

// DepCmd returns the dep command, covering both edge creation and the
// tree subcommand.
func DepCmd(a *app) *Command {
	fs := flag.NewFlagSet("dep", flag.ContinueOnError)
	fs.Bool("full", false, "Re-expand shared subtrees at every occurrence (tree only)")

	return &Command{
		Flags: fs,
		Usage: "dep <id> <dep-id>",
		Short: "Add dependency, or show tree",
		Long: `Add a dependency: "tk dep <id> <dep-id>" records that <id> depends
on <dep-id>. The dependency may reference a ticket that does not
exist yet.

Show the dependency tree: "tk dep tree <id>". By default each ticket
is expanded once and later occurrences are abbreviated; --full
re-expands shared subtrees. Cycles are always cut with a marker.`,
		Exec: func(_ context.Context, o *IO, args []string) error {
			if len(args) > 0 && args[0] == "tree" {
				full, _ := fs.GetBool("full")

				return execDepTree(o, a, args[1:], full)
			}

			return execDepAdd(o, a, args)
		},
	}
}

func execDepAdd(o *IO, a *app, args []string) error {
	if len(args) == 0 {
		return ticket.ErrIDRequired
	}

	if len(args) < 2 {
		return errDepIDRequired
	}

	id, resolveErr := a.store.Resolve(args[0])
	if resolveErr != nil {
		return resolveErr
	}

	depID, depErr := resolveDepRef(a, args[1])
	if depErr != nil {
		return depErr
	}

	addErr := a.store.AddDep(id, depID)
	if addErr != nil {
		return addErr
	}

	o.Println(id, "depends on", depID)

	return nil
}

func execDepTree(o *IO, a *app, args []string, full bool) error {
	if len(args) == 0 {
		return ticket.ErrIDRequired
	}

	rootID, resolveErr := a.store.Resolve(args[0])
	if resolveErr != nil {
		return resolveErr
	}

	graph, err := loadGraph(o, a)
	if err != nil {
		return err
	}

	o.Printf("%s", graph.Tree(rootID, full))

	return nil
}

// UndepCmd returns the undep command.
func UndepCmd(a *app) *Command {
	fs := flag.NewFlagSet("undep", flag.ContinueOnError)

	return &Command{
		Flags: fs,
		Usage: "undep <id> <dep-id>",
		Short: "Remove dependency",
		Long:  `Remove a dependency edge. Removing an absent edge is a no-op.`,
		Exec: func(_ context.Context, o *IO, args []string) error {
			if len(args) == 0 {
				return ticket.ErrIDRequired
			}

			if len(args) < 2 {
				return errDepIDRequired
			}

			id, resolveErr := a.store.Resolve(args[0])
			if resolveErr != nil {
				return resolveErr
			}

			depID, depErr := resolveDepRef(a, args[1])
			if depErr != nil {
				return depErr
			}

			removeErr := a.store.RemoveDep(id, depID)
			if removeErr != nil {
				return removeErr
			}

			o.Println(id, "no longer depends on", depID)

			return nil
		},
	}
}

// resolveDepRef maps a dependency argument to a stored ID when one
// matches. A reference that matches nothing is kept literally (dangling
// deps are allowed); an ambiguous partial is still an error.
func resolveDepRef(a *app, ref string) (string, error) {
	if ref == "" {
		return "", errDepIDRequired
	}

	resolved, err := a.store.Resolve(ref)
	if err == nil {
		return resolved, nil
	}

	var ambiguous *ticket.AmbiguousIDError
	if errors.As(err, &ambiguous) {
		return "", err
	}

	return ref, nil
}

// loadGraph loads every parseable ticket into a graph, reporting
// malformed files as warnings instead of aborting.
func loadGraph(o *IO, a *app) (*ticket.Graph, error) {
	results, err := a.store.List()
	if err != nil {
		return nil, err
	}

	tickets := make([]*ticket.Ticket, 0, len(results))

	for _, res := range results {
		if res.Err != nil {
			o.Warn("skipping "+res.Path, res.Err.Error())

			continue
		}

		tickets = append(tickets, res.Ticket)
	}

	return ticket.NewGraph(tickets), nil
}
