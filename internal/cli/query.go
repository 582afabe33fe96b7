package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"

	flag "github.com/spf13/pflag"

	"tk/internal/ticket"
)

var errJqNotFound = errors.New("jq not found (required for query filters)")

// QueryCmd returns the query command.
func QueryCmd(a *app) *Command {
	fs := flag.NewFlagSet("query", flag.ContinueOnError)

	return &Command{
		Flags: fs,
		Usage: "query [filter]",
		Short: "Dump tickets as JSONL",
		Long: `Print every ticket as one JSON object per line. With a filter
argument, each line is passed through jq's select():

  tk query '.status == "open" and .priority <= 1'

The projection is lossless: every stored field appears in the output.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			results, err := a.store.List()
			if err != nil {
				return err
			}

			var buf bytes.Buffer

			enc := json.NewEncoder(&buf)

			for _, res := range results {
				if res.Err != nil {
					o.Warn("skipping "+res.Path, res.Err.Error())

					continue
				}

				encodeErr := enc.Encode(ticket.Project(res.Ticket))
				if encodeErr != nil {
					return encodeErr
				}
			}

			if len(args) == 0 {
				o.Printf("%s", buf.String())

				return nil
			}

			return runJqFilter(ctx, o, &buf, args[0])
		},
	}
}

// runJqFilter pipes the JSONL stream through jq so filters get a full
// query language instead of a bespoke expression parser.
func runJqFilter(ctx context.Context, o *IO, input *bytes.Buffer, filter string) error {
	_, lookErr := exec.LookPath("jq")
	if lookErr != nil {
		return errJqNotFound
	}

	cmd := exec.CommandContext(ctx, "jq", "-c", fmt.Sprintf("select(%s)", filter))
	cmd.Stdin = input

	var out, errOut bytes.Buffer

	cmd.Stdout = &out
	cmd.Stderr = &errOut

	runErr := cmd.Run()
	if runErr != nil {
		return fmt.Errorf("jq: %w: %s", runErr, bytes.TrimSpace(errOut.Bytes()))
	}

	o.Printf("%s", out.String())

	return nil
}
