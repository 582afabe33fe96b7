package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeBeadsExport(t *testing.T, dir string, lines ...string) {
	t.Helper()

	beadsDir := filepath.Join(dir, ".beads")
	if err := os.MkdirAll(beadsDir, 0o750); err != nil {
		t.Fatal(err)
	}

	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(filepath.Join(beadsDir, "issues.jsonl"), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestMigrateBeadsImports(t *testing.T) {
	t.Parallel()

	r := NewCLI(t)
	writeBeadsExport(t, r.Dir,
		`{"id":"bd-1","title":"Legacy one","priority":1,"issue_type":"bug"}`,
		`{"id":"bd-2","title":"Legacy two","dependencies":["bd-1"]}`,
	)

	out := r.MustRun("migrate-beads")
	AssertContains(t, out, "imported 2 ticket(s), 0 error(s)")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	first, second := lines[0], lines[1]

	AssertContains(t, r.ReadTicket(first), "external-ref: bd-1")
	AssertContains(t, r.ReadTicket(first), "priority: 1")
	AssertContains(t, r.ReadTicket(first), "type: bug")

	// Legacy dependency rewritten to the new ID.
	AssertContains(t, r.ReadTicket(second), "deps: ["+first+"]")
}

// A record without a priority imports with the default, not zero.
func TestMigrateBeadsDefaultPriority(t *testing.T) {
	t.Parallel()

	r := NewCLI(t)
	writeBeadsExport(t, r.Dir, `{"id":"bd-1","title":"No priority"}`)

	out := r.MustRun("migrate-beads")
	id := strings.Split(strings.TrimSpace(out), "\n")[0]

	AssertContains(t, r.ReadTicket(id), "priority: 2")
}

func TestMigrateBeadsReportsBadRecords(t *testing.T) {
	t.Parallel()

	r := NewCLI(t)
	writeBeadsExport(t, r.Dir,
		`{"id":"bd-1","title":"Good"}`,
		`{broken`,
	)

	stdout, stderr, code := r.Run("migrate-beads")

	if code != 1 {
		t.Errorf("import errors should force exit code 1, got %d", code)
	}

	AssertContains(t, stdout, "imported 1 ticket(s), 1 error(s)")
	AssertContains(t, stderr, "line 2")
}

func TestMigrateBeadsMissingExport(t *testing.T) {
	t.Parallel()

	r := NewCLI(t)

	stderr := r.MustFail("migrate-beads")
	AssertContains(t, stderr, "no beads export found")
}

func TestMigrateBeadsFromFlag(t *testing.T) {
	t.Parallel()

	r := NewCLI(t)

	path := filepath.Join(r.Dir, "custom.jsonl")
	if err := os.WriteFile(path, []byte(`{"id":"bd-9","title":"Elsewhere"}`+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	out := r.MustRun("migrate-beads", "--from", "custom.jsonl")
	AssertContains(t, out, "imported 1 ticket(s), 0 error(s)")
}
