package cli

import (
	"encoding/json"
	"os/exec"
	"strings"
	"testing"
)

func TestQueryEmitsJSONL(t *testing.T) {
	t.Parallel()

	r := NewCLI(t)
	first := r.MustRun("create", "First", "-p", "0")
	second := r.MustRun("create", "Second")
	r.MustRun("dep", second, first)

	out := r.MustRun("query")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected one JSON line per ticket, got %d:\n%s", len(lines), out)
	}

	for _, line := range lines {
		var record map[string]any

		if err := json.Unmarshal([]byte(line), &record); err != nil {
			t.Fatalf("line is not valid JSON: %v\n%s", err, line)
		}

		for _, key := range []string{"id", "status", "deps", "priority", "title"} {
			if _, ok := record[key]; !ok {
				t.Errorf("record missing %q: %s", key, line)
			}
		}
	}

	AssertContains(t, out, `"id":"`+first+`"`)
	AssertContains(t, out, `"deps":["`+first+`"]`)
}

func TestQueryWithJqFilter(t *testing.T) {
	t.Parallel()

	if _, err := exec.LookPath("jq"); err != nil {
		t.Skip("jq not installed")
	}

	r := NewCLI(t)
	urgent := r.MustRun("create", "Urgent", "-p", "0")
	relaxed := r.MustRun("create", "Relaxed", "-p", "4")

	out := r.MustRun("query", ".priority == 0")
	AssertContains(t, out, urgent)
	AssertNotContains(t, out, relaxed)
}

func TestQuerySkipsMalformedWithWarning(t *testing.T) {
	t.Parallel()

	r := NewCLI(t)
	good := r.MustRun("create", "Good")
	r.WriteTicket("tk-broken", "garbage")

	stdout, stderr, code := r.Run("query")

	if code != 1 {
		t.Errorf("malformed files should force exit code 1, got %d", code)
	}

	AssertContains(t, stdout, good)
	AssertContains(t, stderr, "tk-broken")
}

func TestQueryEmptyStore(t *testing.T) {
	t.Parallel()

	r := NewCLI(t)

	out := r.MustRun("query")
	if strings.TrimSpace(out) != "" {
		t.Errorf("query on empty store should print nothing, got %q", out)
	}
}
