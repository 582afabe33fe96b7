package ticket

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// beadsIssue mirrors one line of a beads issues.jsonl export. Only the
// fields with a home in the ticket schema are decoded; everything else
// on the line is ignored.
type beadsIssue struct {
	ID                 string   `json:"id"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Design             string   `json:"design"`
	AcceptanceCriteria string   `json:"acceptance_criteria"`
	Status             string   `json:"status"`
	Priority           *int     `json:"priority"`
	IssueType          string   `json:"issue_type"`
	Assignee           string   `json:"assignee"`
	Dependencies       []string `json:"dependencies"`
}

// MigrateResult reports the outcome of a legacy import. Errors holds
// one entry per failed record; successful records are unaffected by
// failures elsewhere in the stream.
type MigrateResult struct {
	Created []string // new ticket IDs, in input order
	Errors  []*ImportError
}

// MigrateBeads imports a beads issues.jsonl stream. Legacy IDs land in
// ExternalRef, missing optional fields fall back to the ticket
// defaults, and legacy dependency lists are rewritten to the newly
// allocated IDs in a second pass (a dependency on a record that failed
// to import is dropped with an ImportError, not invented).
func (s *Store) MigrateBeads(r io.Reader, defaultAssignee string) (MigrateResult, error) {
	var result MigrateResult

	// legacy beads ID -> new ticket ID, for dependency rewriting
	idMap := make(map[string]string)

	type pendingDeps struct {
		newID  string
		line   int
		legacy []string
	}

	var pending []pendingDeps

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	lineNo := 0

	for scanner.Scan() {
		lineNo++

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var issue beadsIssue

		decodeErr := json.Unmarshal([]byte(line), &issue)
		if decodeErr != nil {
			result.Errors = append(result.Errors, &ImportError{Line: lineNo, Err: decodeErr})

			continue
		}

		tkt, convErr := s.ticketFromBeads(&issue, defaultAssignee)
		if convErr != nil {
			result.Errors = append(result.Errors, &ImportError{Line: lineNo, Err: convErr})

			continue
		}

		newID, createErr := s.Create(tkt)
		if createErr != nil {
			result.Errors = append(result.Errors, &ImportError{Line: lineNo, Err: createErr})

			continue
		}

		result.Created = append(result.Created, newID)

		if issue.ID != "" {
			idMap[issue.ID] = newID
		}

		if len(issue.Dependencies) > 0 {
			pending = append(pending, pendingDeps{newID: newID, line: lineNo, legacy: issue.Dependencies})
		}
	}

	scanErr := scanner.Err()
	if scanErr != nil {
		return result, fmt.Errorf("reading import stream: %w", scanErr)
	}

	// Second pass: dependencies can reference records that appear later
	// in the stream, so edges are added only once all IDs are known.
	for _, p := range pending {
		for _, legacyDep := range p.legacy {
			newDep, known := idMap[legacyDep]
			if !known {
				result.Errors = append(result.Errors, &ImportError{
					Line: p.line,
					Err:  fmt.Errorf("dependency %q was not imported", legacyDep),
				})

				continue
			}

			depErr := s.AddDep(p.newID, newDep)
			if depErr != nil {
				result.Errors = append(result.Errors, &ImportError{Line: p.line, Err: depErr})
			}
		}
	}

	return result, nil
}

func (s *Store) ticketFromBeads(issue *beadsIssue, defaultAssignee string) (*Ticket, error) {
	if issue.Title == "" {
		return nil, fmt.Errorf("%w (legacy id %q)", ErrTitleRequired, issue.ID)
	}

	tkt := New(issue.Title)
	tkt.Description = issue.Description
	tkt.Design = issue.Design
	tkt.Acceptance = issue.AcceptanceCriteria
	tkt.ExternalRef = issue.ID
	tkt.Assignee = issue.Assignee

	if tkt.Assignee == "" {
		tkt.Assignee = defaultAssignee
	}

	if issue.IssueType != "" {
		if !IsValidType(issue.IssueType) {
			return nil, wrapInvalid(ErrInvalidType, issue.IssueType)
		}

		tkt.Type = issue.IssueType
	}

	if issue.Priority != nil {
		if !IsValidPriority(*issue.Priority) {
			return nil, fmt.Errorf("%w: %d", ErrInvalidPriority, *issue.Priority)
		}

		tkt.Priority = *issue.Priority
	}

	switch issue.Status {
	case "":
		// default open
	case StatusOpen, StatusInProgress, StatusClosed:
		tkt.Status = issue.Status
	case "blocked":
		// beads tracks blocked as a status; here it is derived from deps.
		tkt.Status = StatusOpen
	default:
		return nil, wrapInvalid(ErrInvalidStatus, issue.Status)
	}

	return tkt, nil
}
