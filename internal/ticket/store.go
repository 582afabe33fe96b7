package ticket

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/natefinch/atomic"
)

// Store persists tickets as one markdown file per ticket under Dir.
// It owns ID allocation and the read/modify/write cycle. All writes are
// atomic replace-on-write so a concurrent reader never observes a
// half-written record; concurrent writers to the same ticket resolve as
// last-writer-wins at whole-record granularity.
type Store struct {
	Dir       string // absolute path to the ticket directory
	Namespace string // ID prefix for newly created tickets
}

// NewStore returns a store over the given ticket directory.
func NewStore(dir, namespace string) *Store {
	return &Store{Dir: dir, Namespace: namespace}
}

// Result holds the outcome of loading a single ticket file. Malformed
// files carry Err instead of Ticket so bulk operations can report and
// keep going.
type Result struct {
	Ticket  *Ticket
	Path    string
	ModTime time.Time
	Err     error
}

// Create validates the ticket, allocates a collision-checked ID, and
// persists the record. Returns the new ID. The ID-existence check and
// the write happen under a directory-level lock so two concurrent
// creates cannot allocate the same ID.
func (s *Store) Create(t *Ticket) (string, error) {
	validateErr := t.Validate()
	if validateErr != nil {
		return "", validateErr
	}

	mkdirErr := os.MkdirAll(s.Dir, dirPerms)
	if mkdirErr != nil {
		return "", fmt.Errorf("creating ticket directory: %w", mkdirErr)
	}

	var ticketID string

	lockErr := WithLock(filepath.Join(s.Dir, "create"), func() error {
		var genErr error

		ticketID, genErr = GenerateUniqueID(s.Dir, s.Namespace)
		if genErr != nil {
			return genErr
		}

		t.ID = ticketID

		return s.writeNew(t)
	})
	if lockErr != nil {
		return "", lockErr
	}

	return ticketID, nil
}

// writeNew writes a ticket that must not exist yet.
func (s *Store) writeNew(t *Ticket) error {
	path := Path(s.Dir, t.ID)

	_, statErr := os.Stat(path)
	if statErr == nil {
		return fmt.Errorf("%w: %s", ErrTicketFileExists, path)
	}

	writeErr := atomic.WriteFile(path, strings.NewReader(Format(t)))
	if writeErr != nil {
		return fmt.Errorf("writing ticket file: %w", writeErr)
	}

	// atomic.WriteFile doesn't set permissions for new files.
	chmodErr := os.Chmod(path, filePerms)
	if chmodErr != nil {
		return fmt.Errorf("setting file permissions: %w", chmodErr)
	}

	return nil
}

// Load reads and parses a single ticket by exact ID.
func (s *Store) Load(id string) (*Ticket, error) {
	path := Path(s.Dir, id)

	content, readErr := os.ReadFile(path)
	if readErr != nil {
		if os.IsNotExist(readErr) {
			return nil, fmt.Errorf("%w: %s", ErrTicketNotFound, id)
		}

		return nil, fmt.Errorf("reading ticket: %w", readErr)
	}

	tkt, parseErr := Parse(content)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, parseErr)
	}

	return tkt, nil
}

// Save writes the full record atomically, advancing Updated.
func (s *Store) Save(t *Ticket) error {
	validateErr := t.Validate()
	if validateErr != nil {
		return validateErr
	}

	t.Updated = time.Now().UTC().Truncate(time.Second)

	path := Path(s.Dir, t.ID)

	writeErr := atomic.WriteFile(path, strings.NewReader(Format(t)))
	if writeErr != nil {
		return fmt.Errorf("writing ticket file: %w", writeErr)
	}

	return nil
}

// Update applies fn to the ticket under its file lock: parse current
// content, mutate, write back. fn returning an error aborts the write.
func (s *Store) Update(id string, fn func(*Ticket) error) error {
	if !Exists(s.Dir, id) {
		return fmt.Errorf("%w: %s", ErrTicketNotFound, id)
	}

	path := Path(s.Dir, id)

	return WithTicketLock(path, func(content []byte) ([]byte, error) {
		tkt, parseErr := Parse(content)
		if parseErr != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, parseErr)
		}

		applyErr := fn(tkt)
		if applyErr != nil {
			return nil, applyErr
		}

		tkt.Updated = time.Now().UTC().Truncate(time.Second)

		return []byte(Format(tkt)), nil
	})
}

// List loads every ticket in the store. Malformed files are returned as
// Results with Err set; they never abort the listing. Order is creation
// time (oldest first), ties broken by ID.
func (s *Store) List() ([]Result, error) {
	entries, err := os.ReadDir(s.Dir)
	if os.IsNotExist(err) {
		// Ticket directory missing => no tickets.
		return []Result{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("reading ticket directory: %w", err)
	}

	results := make([]Result, 0, len(entries))

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".md") {
			continue
		}

		path := filepath.Join(s.Dir, name)

		result := Result{Path: path}

		info, infoErr := entry.Info()
		if infoErr == nil {
			result.ModTime = info.ModTime()
		}

		content, readErr := os.ReadFile(path)
		if readErr != nil {
			result.Err = readErr
			results = append(results, result)

			continue
		}

		tkt, parseErr := Parse(content)
		if parseErr != nil {
			result.Err = parseErr
			results = append(results, result)

			continue
		}

		result.Ticket = tkt
		results = append(results, result)
	}

	slices.SortFunc(results, func(a, b Result) int {
		if a.Ticket == nil || b.Ticket == nil {
			return strings.Compare(a.Path, b.Path)
		}

		if cmp := a.Ticket.Created.Compare(b.Ticket.Created); cmp != 0 {
			return cmp
		}

		return strings.Compare(a.Ticket.ID, b.Ticket.ID)
	})

	return results, nil
}

// IDs returns every stored ticket ID, derived from filenames.
func (s *Store) IDs() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if os.IsNotExist(err) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("reading ticket directory: %w", err)
	}

	var ids []string

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".md") {
			continue
		}

		ids = append(ids, strings.TrimSuffix(name, ".md"))
	}

	slices.Sort(ids)

	return ids, nil
}

// Resolve maps a partial identifier to exactly one stored ticket ID.
// An exact ID short-circuits even if it is also a substring of other
// IDs; otherwise the partial must match exactly one ID as a
// case-sensitive substring.
func (s *Store) Resolve(partial string) (string, error) {
	if partial == "" {
		return "", ErrIDRequired
	}

	if Exists(s.Dir, partial) {
		return partial, nil
	}

	ids, err := s.IDs()
	if err != nil {
		return "", err
	}

	var matches []string

	for _, id := range ids {
		if strings.Contains(id, partial) {
			matches = append(matches, id)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrTicketNotFound, partial)
	case 1:
		return matches[0], nil
	default:
		return "", &AmbiguousIDError{Partial: partial, Matches: matches}
	}
}
