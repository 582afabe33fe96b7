package ticket

import (
	"errors"
	"fmt"
	"strings"
)

// Status constants.
const (
	StatusOpen       = "open"
	StatusInProgress = "in_progress"
	StatusClosed     = "closed"
)

// Type constants.
const (
	TypeBug     = "bug"
	TypeFeature = "feature"
	TypeTask    = "task"
	TypeEpic    = "epic"
	TypeChore   = "chore"
)

// Frontmatter delimiter.
const frontmatterDelimiter = "---"

// Error variables for ticket operations.
var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigFileRead     = errors.New("cannot read config file")
	ErrConfigInvalid      = errors.New("invalid config file")
	ErrTicketDirEmpty     = errors.New("ticket-dir cannot be empty")
	ErrFlagRequiresArg    = errors.New("flag requires an argument")
	ErrUnknownFlag        = errors.New("unknown flag")

	ErrIDGenerationFailed = errors.New("no unique id after repeated attempts")
	ErrTicketFileExists   = errors.New("ticket file already exists")
	ErrTicketNotFound     = errors.New("ticket not found")
	ErrIDRequired         = errors.New("ticket ID is required")
	ErrTitleRequired      = errors.New("title is required")

	ErrInvalidStatus   = errors.New("invalid status")
	ErrInvalidType     = errors.New("invalid type")
	ErrInvalidPriority = errors.New("invalid priority (must be 0-4)")

	ErrSelfDependency      = errors.New("ticket cannot depend on itself")
	ErrDuplicateDependency = errors.New("dependency already exists")
	ErrSelfLink            = errors.New("ticket cannot link to itself")
	ErrLinkNeedsTwoIDs     = errors.New("link requires at least two ticket IDs")

	ErrNoteTextRequired = errors.New("note text is required")

	ErrNoEditorFound = errors.New("no editor found (set config.editor, $EDITOR, or install vi/nano)")
)

func wrapInvalid(sentinel error, value string) error {
	return fmt.Errorf("%w: %s", sentinel, value)
}

// AmbiguousIDError reports a partial ID that matched more than one ticket.
// The candidate list is part of the message so callers can disambiguate.
type AmbiguousIDError struct {
	Partial string
	Matches []string
}

func (e *AmbiguousIDError) Error() string {
	return fmt.Sprintf("ambiguous ID %q matches: %s", e.Partial, strings.Join(e.Matches, ", "))
}

// ImportError reports a single legacy record that failed to convert.
// Other records in the same import are unaffected.
type ImportError struct {
	Line int
	Err  error
}

func (e *ImportError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ImportError) Unwrap() error {
	return e.Err
}
