package ticket

import (
	"fmt"
	"slices"
	"strings"
)

// Graph is the directed depends-on relation implied by each ticket's
// Deps field, computed on demand from loaded records. The data may
// contain cycles and dangling references; every traversal is bounded by
// visited-set bookkeeping, never by timeouts.
type Graph struct {
	tickets map[string]*Ticket
	order   []string // insertion order of NewGraph input
}

// NewGraph builds a graph view over the given tickets.
func NewGraph(tickets []*Ticket) *Graph {
	g := &Graph{tickets: make(map[string]*Ticket, len(tickets))}

	for _, t := range tickets {
		if _, seen := g.tickets[t.ID]; seen {
			continue
		}

		g.tickets[t.ID] = t
		g.order = append(g.order, t.ID)
	}

	return g
}

// IsResolved reports whether every direct dependency of id is closed.
// Resolution is defined over direct edges only, not transitively.
// Dangling dependencies count as unresolved: a reference to a ticket
// that doesn't exist cannot be known to be done.
func (g *Graph) IsResolved(id string) bool {
	t, ok := g.tickets[id]
	if !ok {
		return false
	}

	for _, depID := range t.Deps {
		dep, exists := g.tickets[depID]
		if !exists || dep.Status != StatusClosed {
			return false
		}
	}

	return true
}

// Classify partitions all open and in_progress tickets into ready
// (every direct dependency closed) and blocked. Closed tickets appear
// in neither set. Both slices are sorted by priority (0 first), ties by
// ID.
func (g *Graph) Classify() (ready, blocked []*Ticket) {
	for _, id := range g.order {
		t := g.tickets[id]

		if t.Status != StatusOpen && t.Status != StatusInProgress {
			continue
		}

		if g.IsResolved(id) {
			ready = append(ready, t)
		} else {
			blocked = append(blocked, t)
		}
	}

	byUrgency := func(a, b *Ticket) int {
		if a.Priority != b.Priority {
			return a.Priority - b.Priority
		}

		return strings.Compare(a.ID, b.ID)
	}

	slices.SortFunc(ready, byUrgency)
	slices.SortFunc(blocked, byUrgency)

	return ready, blocked
}

// Tree markers for nodes that aren't expanded.
const (
	markerMissing = "(missing)"
	markerCycle   = "(cycle)"
	markerRepeat  = "(seen above)"
)

// Tree renders the dependency tree rooted at rootID as indented text.
//
// In dedup mode (full=false) each ticket is expanded at most once
// across the whole tree; later occurrences render as reference leaves.
// In full mode shared subtrees are re-expanded at every occurrence.
// Both modes carry a path-local visited set so a cycle along the
// current path terminates the branch with a marker instead of recursing
// forever.
func (g *Graph) Tree(rootID string, full bool) string {
	var builder strings.Builder

	expanded := make(map[string]bool)
	onPath := make(map[string]bool)

	g.writeTree(&builder, rootID, 0, full, expanded, onPath)

	return builder.String()
}

func (g *Graph) writeTree(builder *strings.Builder, id string, depth int, full bool, expanded, onPath map[string]bool) {
	indent := strings.Repeat("  ", depth)

	t, exists := g.tickets[id]
	if !exists {
		fmt.Fprintf(builder, "%s%s %s\n", indent, id, markerMissing)

		return
	}

	// The path-local guard comes first: without it, full mode on cyclic
	// data never terminates.
	if onPath[id] {
		fmt.Fprintf(builder, "%s%s %s\n", indent, id, markerCycle)

		return
	}

	if !full && expanded[id] {
		fmt.Fprintf(builder, "%s%s %s\n", indent, id, markerRepeat)

		return
	}

	fmt.Fprintf(builder, "%s%s [%s] P%d %s\n", indent, id, t.Status, t.Priority, t.Title)

	expanded[id] = true
	onPath[id] = true

	for _, depID := range t.Deps {
		g.writeTree(builder, depID, depth+1, full, expanded, onPath)
	}

	delete(onPath, id)
}
