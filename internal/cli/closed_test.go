package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestClosedListsRecentFirst(t *testing.T) {
	t.Parallel()

	r := NewCLI(t)
	older := r.MustRun("create", "Closed long ago")
	newer := r.MustRun("create", "Closed just now")
	open := r.MustRun("create", "Still open")

	r.MustRun("close", older)
	r.MustRun("close", newer)

	// Make the ordering independent of write timing.
	touch(t, filepath.Join(r.TicketDir(), older+".md"), time.Now().Add(-time.Hour))

	out := r.MustRun("closed")

	AssertNotContains(t, out, open)

	if strings.Index(out, newer) > strings.Index(out, older) {
		t.Errorf("most recently closed should list first:\n%s", out)
	}
}

func TestClosedLimit(t *testing.T) {
	t.Parallel()

	r := NewCLI(t)

	var ids []string

	for _, title := range []string{"One", "Two", "Three"} {
		id := r.MustRun("create", title)
		r.MustRun("close", id)
		ids = append(ids, id)
	}

	out := r.MustRun("closed", "--limit=2")

	shown := 0

	for _, id := range ids {
		if strings.Contains(out, id) {
			shown++
		}
	}

	if shown != 2 {
		t.Errorf("limit=2 should show exactly 2 tickets, got %d:\n%s", shown, out)
	}

	stderr := r.MustFail("closed", "--limit=0")
	AssertContains(t, stderr, "limit must be positive")
}

func touch(t *testing.T, path string, at time.Time) {
	t.Helper()

	err := os.Chtimes(path, at, at)
	if err != nil {
		t.Fatalf("chtimes %s: %v", path, err)
	}
}
