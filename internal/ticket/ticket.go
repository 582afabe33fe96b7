package ticket

import (
	"slices"
	"time"
)

// Note is a single append-only annotation on a ticket.
type Note struct {
	At   time.Time
	Text string
}

// Ticket represents a ticket with all its fields.
type Ticket struct {
	ID          string
	Status      string
	Deps        []string
	Links       []string
	Parent      string
	Created     time.Time
	Updated     time.Time
	Type        string
	Priority    int
	Assignee    string
	ExternalRef string
	Title       string
	Description string
	Design      string
	Acceptance  string
	Notes       []Note
}

// validTypes are the allowed ticket types.
var validTypes = []string{TypeBug, TypeFeature, TypeTask, TypeEpic, TypeChore}

// Valid ticket statuses.
var validStatuses = []string{StatusOpen, StatusInProgress, StatusClosed}

// Priority bounds. 0 is the most urgent.
const (
	MinPriority     = 0
	MaxPriority     = 4
	DefaultPriority = 2

	dirPerms  = 0o750
	filePerms = 0o600
)

// New returns a ticket with all defaults filled in.
// Callers override fields before handing it to Store.Create.
func New(title string) *Ticket {
	now := time.Now().UTC().Truncate(time.Second)

	return &Ticket{
		Status:   StatusOpen,
		Type:     TypeTask,
		Priority: DefaultPriority,
		Created:  now,
		Updated:  now,
		Title:    title,
	}
}

// IsValidType checks if the type is valid.
func IsValidType(ticketType string) bool {
	return slices.Contains(validTypes, ticketType)
}

// IsValidStatus checks if the status is one of the three valid values.
func IsValidStatus(status string) bool {
	return slices.Contains(validStatuses, status)
}

// IsValidPriority checks if priority is in valid range.
func IsValidPriority(p int) bool {
	return p >= MinPriority && p <= MaxPriority
}

// Validate checks the invariants Store.Create and Store.Save enforce.
// Deps, Links, and Parent are reference-by-value and deliberately not
// checked for existence; dangling references are tolerated data.
func (t *Ticket) Validate() error {
	if t.Title == "" {
		return ErrTitleRequired
	}

	if !IsValidStatus(t.Status) {
		return wrapInvalid(ErrInvalidStatus, t.Status)
	}

	if !IsValidType(t.Type) {
		return wrapInvalid(ErrInvalidType, t.Type)
	}

	if !IsValidPriority(t.Priority) {
		return ErrInvalidPriority
	}

	return nil
}

// HasDep reports whether depID is a direct dependency of the ticket.
func (t *Ticket) HasDep(depID string) bool {
	return slices.Contains(t.Deps, depID)
}

// HasLink reports whether targetID is linked to the ticket.
func (t *Ticket) HasLink(targetID string) bool {
	return slices.Contains(t.Links, targetID)
}
