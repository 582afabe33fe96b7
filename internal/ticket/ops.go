package ticket

import (
	"fmt"
	"slices"
	"time"
)

// SetStatus sets the ticket's status to any of the three valid values.
// No transition is rejected; the named verbs (start/close/reopen) are
// conveniences over this setter, not a constrained state table.
func (s *Store) SetStatus(id, status string) error {
	if !IsValidStatus(status) {
		return wrapInvalid(ErrInvalidStatus, status)
	}

	return s.Update(id, func(t *Ticket) error {
		t.Status = status

		return nil
	})
}

// AddDep adds the edge "id depends on depID". Acyclicity is not
// checked; cycles are tolerated data and bounded during traversal.
// depID may reference a non-existent ticket.
func (s *Store) AddDep(id, depID string) error {
	if id == depID {
		return ErrSelfDependency
	}

	return s.Update(id, func(t *Ticket) error {
		if t.HasDep(depID) {
			return fmt.Errorf("%w: %s", ErrDuplicateDependency, depID)
		}

		t.Deps = append(t.Deps, depID)

		return nil
	})
}

// RemoveDep removes the edge if present; removing an absent edge is a
// no-op.
func (s *Store) RemoveDep(id, depID string) error {
	return s.Update(id, func(t *Ticket) error {
		t.Deps = slices.DeleteFunc(t.Deps, func(dep string) bool {
			return dep == depID
		})

		return nil
	})
}

// Link establishes the symmetric relation pairwise across all given
// IDs: every pair among the arguments gets a mutual Links entry.
// Adding an already-present link is idempotent.
func (s *Store) Link(ids []string) error {
	if len(ids) < 2 {
		return ErrLinkNeedsTwoIDs
	}

	for idx, id := range ids {
		if slices.Index(ids, id) != idx {
			return fmt.Errorf("%w: %s", ErrSelfLink, id)
		}
	}

	// Every ticket must exist before any is touched, so a bad argument
	// doesn't leave the relation half-applied.
	for _, id := range ids {
		if !Exists(s.Dir, id) {
			return fmt.Errorf("%w: %s", ErrTicketNotFound, id)
		}
	}

	for _, id := range ids {
		others := make([]string, 0, len(ids)-1)

		for _, other := range ids {
			if other != id {
				others = append(others, other)
			}
		}

		err := s.Update(id, func(t *Ticket) error {
			for _, other := range others {
				if !t.HasLink(other) {
					t.Links = append(t.Links, other)
				}
			}

			return nil
		})
		if err != nil {
			return err
		}
	}

	return nil
}

// Unlink removes the single mutual pair between id and targetID,
// leaving any other links of either ticket untouched.
func (s *Store) Unlink(id, targetID string) error {
	if id == targetID {
		return ErrSelfLink
	}

	err := s.Update(id, func(t *Ticket) error {
		t.Links = slices.DeleteFunc(t.Links, func(link string) bool {
			return link == targetID
		})

		return nil
	})
	if err != nil {
		return err
	}

	return s.Update(targetID, func(t *Ticket) error {
		t.Links = slices.DeleteFunc(t.Links, func(link string) bool {
			return link == id
		})

		return nil
	})
}

// AddNote appends a timestamped note. Prior entries are never mutated
// or removed.
func (s *Store) AddNote(id, text string) error {
	if text == "" {
		return ErrNoteTextRequired
	}

	return s.Update(id, func(t *Ticket) error {
		t.Notes = append(t.Notes, Note{
			At:   time.Now().UTC().Truncate(time.Second),
			Text: text,
		})

		return nil
	})
}
