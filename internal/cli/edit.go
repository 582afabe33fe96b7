package cli

import (
	"context"
	"os"
	"os/exec"

	"tk/internal/ticket"

	flag "github.com/spf13/pflag"
)

// EditCmd returns the edit command.
func EditCmd(a *app) *Command {
	fs := flag.NewFlagSet("edit", flag.ContinueOnError)

	return &Command{
		Flags: fs,
		Usage: "edit <id>",
		Short: "Open ticket in editor",
		Long: `Open the ticket file in an editor.

Editor priority: config.editor, then $EDITOR, then vi, then nano.`,
		Exec: func(ctx context.Context, _ *IO, args []string) error {
			if len(args) == 0 {
				return ticket.ErrIDRequired
			}

			id, resolveErr := a.store.Resolve(args[0])
			if resolveErr != nil {
				return resolveErr
			}

			editor, editorErr := resolveEditor(a.cfg, a.env)
			if editorErr != nil {
				return editorErr
			}

			cmd := exec.CommandContext(ctx, editor, ticket.Path(a.store.Dir, id))
			cmd.Stdin = os.Stdin
			cmd.Stdout = os.Stdout
			cmd.Stderr = os.Stderr

			return cmd.Run()
		},
	}
}

// resolveEditor checks for an available editor using the env map.
// Priority: config.editor -> $EDITOR -> vi -> nano -> error.
func resolveEditor(cfg ticket.Config, env map[string]string) (string, error) {
	if cfg.Editor != "" {
		_, lookErr := exec.LookPath(cfg.Editor)
		if lookErr == nil {
			return cfg.Editor, nil
		}
	}

	if editor := env["EDITOR"]; editor != "" {
		_, lookErr := exec.LookPath(editor)
		if lookErr == nil {
			return editor, nil
		}
	}

	for _, fallback := range []string{"vi", "nano"} {
		_, lookErr := exec.LookPath(fallback)
		if lookErr == nil {
			return fallback, nil
		}
	}

	return "", ticket.ErrNoEditorFound
}
