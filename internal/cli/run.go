package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"tk/internal/ticket"
)

const (
	minArgs      = 2
	consumedOne  = 1
	consumedTwo  = 2
	consumedNone = 0
	helpFlag     = "--help"
)

// app carries the resolved runtime wiring shared by all commands.
type app struct {
	cfg   ticket.Config
	store *ticket.Store
	env   map[string]string
	in    io.Reader
}

// Run is the main entry point. Returns exit code.
func Run(in io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string) int {
	if len(args) < minArgs {
		printUsage(out)

		return 0
	}

	// Parse global flags
	flags, err := parseGlobalFlags(args[1:])
	if err != nil {
		fprintln(errOut, "error:", err)

		return 1
	}

	cfg, err := ticket.LoadConfig(ticket.LoadConfigInput{
		WorkDirOverride:   flags.workDir,
		ConfigPath:        flags.configPath,
		TicketDirOverride: flags.ticketDir,
		Env:               env,
	})
	if err != nil {
		fprintln(errOut, "error:", err)
		printUsage(errOut)

		return 1
	}

	if len(flags.remaining) == 0 {
		printUsage(out)

		return 0
	}

	cmdName := flags.remaining[0]
	if cmdName == "-h" || cmdName == helpFlag {
		printUsage(out)

		return 0
	}

	application := &app{
		cfg:   cfg,
		store: ticket.NewStore(cfg.TicketDirAbs, ticket.Namespace(cfg.EffectiveCwd)),
		env:   env,
		in:    in,
	}

	ioCtx := NewIO(in, out, errOut)

	cmd, known := commands(application)[cmdName]
	if !known {
		fprintln(errOut, "error: unknown command:", cmdName)
		printUsage(errOut)

		return 1
	}

	return cmd.Run(context.Background(), ioCtx, flags.remaining[1:])
}

// commands builds the dispatch table. Constructed per invocation because
// each Command owns a fresh FlagSet.
func commands(a *app) map[string]*Command {
	table := make(map[string]*Command)

	for _, cmd := range []*Command{
		CreateCmd(a),
		ShowCmd(a),
		LsCmd(a),
		StartCmd(a),
		CloseCmd(a),
		ReopenCmd(a),
		StatusCmd(a),
		DepCmd(a),
		UndepCmd(a),
		LinkCmd(a),
		UnlinkCmd(a),
		ReadyCmd(a),
		BlockedCmd(a),
		ClosedCmd(a),
		AddNoteCmd(a),
		EditCmd(a),
		QueryCmd(a),
		MigrateBeadsCmd(a),
		PrintConfigCmd(a),
	} {
		table[cmd.Name()] = cmd
	}

	return table
}

type globalFlags struct {
	workDir    string
	configPath string
	ticketDir  string
	remaining  []string
}

func parseGlobalFlags(args []string) (globalFlags, error) {
	var flags globalFlags

	idx := 0
	for idx < len(args) {
		consumed, err := parseFlag(args, idx, &flags)
		if err != nil {
			return globalFlags{}, err
		}

		if consumed == 0 {
			// Not a flag, this is the command
			flags.remaining = args[idx:]

			break
		}

		idx += consumed
	}

	return flags, nil
}

// parseFlag tries to parse a flag at args[idx]. Returns number of args consumed (0 if not a flag).
func parseFlag(args []string, idx int, flags *globalFlags) (int, error) {
	arg := args[idx]

	// -C/--cwd flag (work directory)
	if arg == "-C" || arg == "--cwd" {
		if idx+1 >= len(args) {
			return consumedNone, fmt.Errorf("%w: %s", ticket.ErrFlagRequiresArg, arg)
		}

		flags.workDir = args[idx+1]

		return consumedTwo, nil
	}

	if after, ok := strings.CutPrefix(arg, "-C"); ok && after != "" {
		flags.workDir = after

		return consumedOne, nil
	}

	if after, ok := strings.CutPrefix(arg, "--cwd="); ok {
		flags.workDir = after

		return consumedOne, nil
	}

	// -c/--config flag
	if arg == "-c" || arg == "--config" {
		if idx+1 >= len(args) {
			return consumedNone, fmt.Errorf("%w: %s", ticket.ErrFlagRequiresArg, arg)
		}

		flags.configPath = args[idx+1]

		return consumedTwo, nil
	}

	if after, ok := strings.CutPrefix(arg, "--config="); ok {
		flags.configPath = after

		return consumedOne, nil
	}

	// --ticket-dir flag
	if arg == "--ticket-dir" {
		if idx+1 >= len(args) {
			return consumedNone, fmt.Errorf("%w: %s", ticket.ErrFlagRequiresArg, arg)
		}

		flags.ticketDir = args[idx+1]

		return consumedTwo, nil
	}

	if after, ok := strings.CutPrefix(arg, "--ticket-dir="); ok {
		flags.ticketDir = after

		return consumedOne, nil
	}

	// -h/--help flags
	if arg == "-h" || arg == helpFlag {
		flags.remaining = []string{helpFlag}

		return len(args) - idx, nil
	}

	// Unknown flag
	if strings.HasPrefix(arg, "-") && arg != "-" {
		return consumedNone, fmt.Errorf("%w: %s", ticket.ErrUnknownFlag, arg)
	}

	// Not a flag
	return consumedNone, nil
}

func fprintln(w io.Writer, a ...any) {
	_, _ = fmt.Fprintln(w, a...)
}

func printUsage(writer io.Writer) {
	fprintln(writer, `tk - minimal ticket system with dependency tracking

Usage: tk [options] <command> [args]

Options:
  -C, --cwd <dir>      Run as if started in <dir>
  -c, --config <file>  Use specified config file
      --ticket-dir <d> Override ticket directory

Commands:
  create <title> [flags]     Create ticket, prints ID
  show <id>                  Show raw ticket file
  ls [--status=X]            List tickets
  start <id>                 Set status to in_progress
  close <id>                 Set status to closed
  reopen <id>                Set status to open
  status <id> <status>       Set status to any valid value
  dep <id> <dep-id>          Add dependency (id depends on dep-id)
  dep tree [--full] <id>     Show dependency tree
  undep <id> <dep-id>        Remove dependency
  link <id> <id>...          Link tickets (symmetric)
  unlink <id> <id>           Remove link
  ready                      Open/in_progress tickets with all deps closed
  blocked                    Open/in_progress tickets with unresolved deps
  closed [--limit=N]         Recently closed tickets
  add-note <id> [text]       Append timestamped note (reads stdin if no text)
  edit <id>                  Open ticket in editor
  query [filter]             Dump tickets as JSONL, optionally filtered via jq
  migrate-beads              Import tickets from .beads/issues.jsonl
  print-config               Show resolved configuration

Run 'tk <command> --help' for details on a command.`)
}
