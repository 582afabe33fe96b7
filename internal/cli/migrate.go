package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	flag "github.com/spf13/pflag"
)

// MigrateBeadsCmd returns the migrate-beads command.
func MigrateBeadsCmd(a *app) *Command {
	fs := flag.NewFlagSet("migrate-beads", flag.ContinueOnError)
	fs.String("from", "", "Path to issues.jsonl (default .beads/issues.jsonl)")

	return &Command{
		Flags: fs,
		Usage: "migrate-beads",
		Short: "Import tickets from a beads export",
		Long: `Import tickets from a beads issues.jsonl export. Each record becomes
a new ticket; the legacy ID is kept as external-ref and legacy
dependency lists are rewritten to the new IDs. A record that fails to
convert is reported and skipped; the rest of the import proceeds.`,
		Exec: func(_ context.Context, o *IO, _ []string) error {
			path, _ := fs.GetString("from")
			if path == "" {
				path = filepath.Join(a.cfg.EffectiveCwd, ".beads", "issues.jsonl")
			} else if !filepath.IsAbs(path) {
				path = filepath.Join(a.cfg.EffectiveCwd, path)
			}

			file, openErr := os.Open(path)
			if openErr != nil {
				if os.IsNotExist(openErr) {
					return fmt.Errorf("no beads export found at %s", path)
				}

				return openErr
			}
			defer func() { _ = file.Close() }()

			result, migrateErr := a.store.MigrateBeads(file, defaultAssignee(a))
			if migrateErr != nil {
				return migrateErr
			}

			for _, importErr := range result.Errors {
				o.Warn("import", importErr.Error())
			}

			for _, id := range result.Created {
				o.Println(id)
			}

			o.Printf("imported %d ticket(s), %d error(s)\n", len(result.Created), len(result.Errors))

			return nil
		},
	}
}
