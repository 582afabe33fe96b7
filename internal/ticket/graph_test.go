package ticket

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func graphTicket(id, status string, priority int, deps ...string) *Ticket {
	tkt := New("title " + id)
	tkt.ID = id
	tkt.Status = status
	tkt.Priority = priority
	tkt.Deps = deps

	return tkt
}

func TestIsResolved(t *testing.T) {
	t.Parallel()

	g := NewGraph([]*Ticket{
		graphTicket("a", StatusOpen, 2, "b", "c"),
		graphTicket("b", StatusClosed, 2),
		graphTicket("c", StatusOpen, 2),
		graphTicket("d", StatusOpen, 2, "b"),
		graphTicket("e", StatusOpen, 2, "ghost"),
		graphTicket("f", StatusOpen, 2),
	})

	assert.False(t, g.IsResolved("a"), "open dep blocks")
	assert.True(t, g.IsResolved("d"), "all deps closed")
	assert.False(t, g.IsResolved("e"), "dangling dep blocks")
	assert.True(t, g.IsResolved("f"), "no deps")
	assert.False(t, g.IsResolved("ghost"), "unknown ticket")
}

func TestClassify(t *testing.T) {
	t.Parallel()

	g := NewGraph([]*Ticket{
		graphTicket("p2-ready", StatusOpen, 2),
		graphTicket("p0-ready", StatusInProgress, 0),
		graphTicket("blocked-one", StatusOpen, 1, "p2-ready"),
		graphTicket("done", StatusClosed, 0),
		graphTicket("dangling", StatusOpen, 3, "ghost"),
	})

	ready, blocked := g.Classify()

	readyIDs := ticketIDs(ready)
	blockedIDs := ticketIDs(blocked)

	// Priority 0 sorts first.
	assert.Equal(t, []string{"p0-ready", "p2-ready"}, readyIDs)
	assert.Equal(t, []string{"blocked-one", "dangling"}, blockedIDs)
}

// Closing the last open dependency moves the dependent from blocked to
// ready.
func TestClassifyAfterClosingDep(t *testing.T) {
	t.Parallel()

	dep := graphTicket("dep", StatusOpen, 2)
	dependent := graphTicket("dependent", StatusOpen, 2, "dep")

	g := NewGraph([]*Ticket{dep, dependent})

	_, blocked := g.Classify()
	assert.Equal(t, []string{"dependent"}, ticketIDs(blocked))

	dep.Status = StatusClosed

	g = NewGraph([]*Ticket{dep, dependent})

	ready, blocked := g.Classify()
	assert.Equal(t, []string{"dependent"}, ticketIDs(ready))
	assert.Empty(t, blocked)
}

func TestTreeDedup(t *testing.T) {
	t.Parallel()

	// Diamond: root -> left, right; both -> shared.
	g := NewGraph([]*Ticket{
		graphTicket("root", StatusOpen, 2, "left", "right"),
		graphTicket("left", StatusOpen, 1, "shared"),
		graphTicket("right", StatusOpen, 1, "shared"),
		graphTicket("shared", StatusClosed, 2),
	})

	out := g.Tree("root", false)

	assert.Equal(t, 1, strings.Count(out, "shared [closed]"), "dedup expands shared once")
	assert.Equal(t, 1, strings.Count(out, "shared "+markerRepeat))

	full := g.Tree("root", true)
	assert.Equal(t, 2, strings.Count(full, "shared [closed]"), "full re-expands shared subtree")
	assert.NotContains(t, full, markerRepeat)
}

func TestTreeMissingDep(t *testing.T) {
	t.Parallel()

	g := NewGraph([]*Ticket{
		graphTicket("root", StatusOpen, 2, "ghost"),
	})

	out := g.Tree("root", false)
	assert.Contains(t, out, "ghost "+markerMissing)
}

func TestTreeCycleTerminates(t *testing.T) {
	t.Parallel()

	g := NewGraph([]*Ticket{
		graphTicket("a", StatusOpen, 2, "b"),
		graphTicket("b", StatusOpen, 2, "c"),
		graphTicket("c", StatusOpen, 2, "a"),
	})

	for _, full := range []bool{false, true} {
		out := g.Tree("a", full)
		require.Contains(t, out, "a "+markerCycle)
		assert.Equal(t, 1, strings.Count(out, markerCycle))
	}
}

func TestTreeSelfCycle(t *testing.T) {
	t.Parallel()

	g := NewGraph([]*Ticket{
		graphTicket("loop", StatusOpen, 2, "loop"),
	})

	out := g.Tree("loop", true)
	assert.Contains(t, out, "loop "+markerCycle)
}

func TestTreeIndentation(t *testing.T) {
	t.Parallel()

	g := NewGraph([]*Ticket{
		graphTicket("top", StatusOpen, 0, "mid"),
		graphTicket("mid", StatusInProgress, 1, "leaf"),
		graphTicket("leaf", StatusClosed, 2),
	})

	want := "top [open] P0 title top\n" +
		"  mid [in_progress] P1 title mid\n" +
		"    leaf [closed] P2 title leaf\n"

	assert.Equal(t, want, g.Tree("top", false))
}

func ticketIDs(tickets []*Ticket) []string {
	ids := make([]string, 0, len(tickets))
	for _, t := range tickets {
		ids = append(ids, t.ID)
	}

	return ids
}
