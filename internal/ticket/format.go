package ticket

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Section headers recognized in the ticket body.
const (
	headerDesign     = "## Design"
	headerAcceptance = "## Acceptance Criteria"
	headerNotes      = "## Notes"
)

// Parse errors. All of them mean the stored file is malformed; bulk
// operations report them per file and keep going.
var (
	errNoFrontmatter       = errors.New("no frontmatter found")
	errUnclosedFrontmatter = errors.New("unclosed frontmatter")
	errInvalidFrontmatter  = errors.New("invalid frontmatter")
	errMissingField        = errors.New("missing required field")
	errInvalidFieldValue   = errors.New("invalid field value")
	errNoTitle             = errors.New("no title found")
	errInvalidNote         = errors.New("invalid note entry")
)

// Format renders a ticket as markdown with YAML frontmatter.
// Field order is fixed so files stay diff-friendly across rewrites.
func Format(t *Ticket) string {
	var builder strings.Builder

	builder.WriteString("---\n")
	builder.WriteString("id: " + t.ID + "\n")
	builder.WriteString("status: " + t.Status + "\n")
	builder.WriteString("deps: " + formatIDList(t.Deps) + "\n")
	builder.WriteString("links: " + formatIDList(t.Links) + "\n")
	builder.WriteString("created: " + t.Created.UTC().Format(time.RFC3339) + "\n")
	builder.WriteString("updated: " + t.Updated.UTC().Format(time.RFC3339) + "\n")
	builder.WriteString("type: " + t.Type + "\n")
	builder.WriteString(fmt.Sprintf("priority: %d\n", t.Priority))

	if t.Assignee != "" {
		builder.WriteString("assignee: " + t.Assignee + "\n")
	}

	if t.ExternalRef != "" {
		builder.WriteString("external-ref: " + t.ExternalRef + "\n")
	}

	if t.Parent != "" {
		builder.WriteString("parent: " + t.Parent + "\n")
	}

	builder.WriteString("---\n")

	builder.WriteString("# " + t.Title + "\n")

	if t.Description != "" {
		builder.WriteString("\n" + t.Description + "\n")
	}

	if t.Design != "" {
		builder.WriteString("\n" + headerDesign + "\n\n" + t.Design + "\n")
	}

	if t.Acceptance != "" {
		builder.WriteString("\n" + headerAcceptance + "\n\n" + t.Acceptance + "\n")
	}

	if len(t.Notes) > 0 {
		builder.WriteString("\n" + headerNotes + "\n\n")

		for _, note := range t.Notes {
			builder.WriteString(formatNote(note))
		}
	}

	return builder.String()
}

func formatIDList(ids []string) string {
	if len(ids) == 0 {
		return "[]"
	}

	return "[" + strings.Join(ids, ", ") + "]"
}

// formatNote renders one note bullet. Continuation lines of multi-line
// notes are indented two spaces so Parse can rejoin them.
func formatNote(note Note) string {
	text := strings.ReplaceAll(note.Text, "\n", "\n  ")

	return "- " + note.At.UTC().Format(time.RFC3339) + ": " + text + "\n"
}

// frontmatter mirrors the YAML header of a ticket file. Timestamps stay
// strings here; Parse validates them against RFC3339 explicitly.
type frontmatter struct {
	ID          string   `yaml:"id"`
	Status      string   `yaml:"status"`
	Deps        []string `yaml:"deps"`
	Links       []string `yaml:"links"`
	Created     string   `yaml:"created"`
	Updated     string   `yaml:"updated"`
	Type        string   `yaml:"type"`
	Priority    *int     `yaml:"priority"`
	Assignee    string   `yaml:"assignee"`
	ExternalRef string   `yaml:"external-ref"`
	Parent      string   `yaml:"parent"`
}

// Parse parses a ticket file. It is the inverse of Format: a ticket
// written by Format parses back field-for-field.
func Parse(content []byte) (*Ticket, error) {
	header, body, err := splitFrontmatter(content)
	if err != nil {
		return nil, err
	}

	var fm frontmatter

	unmarshalErr := yaml.Unmarshal(header, &fm)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("%w: %w", errInvalidFrontmatter, unmarshalErr)
	}

	tkt, err := ticketFromFrontmatter(&fm)
	if err != nil {
		return nil, err
	}

	parseErr := parseBody(tkt, body)
	if parseErr != nil {
		return nil, parseErr
	}

	if tkt.Title == "" {
		return nil, errNoTitle
	}

	return tkt, nil
}

// splitFrontmatter splits content into the YAML header and the body.
// The file must start with a "---" line and contain a closing one.
func splitFrontmatter(content []byte) ([]byte, []string, error) {
	lines := strings.Split(string(content), "\n")

	if len(lines) == 0 || strings.TrimSpace(lines[0]) != frontmatterDelimiter {
		return nil, nil, errNoFrontmatter
	}

	for idx := 1; idx < len(lines); idx++ {
		if strings.TrimSpace(lines[idx]) == frontmatterDelimiter {
			header := strings.Join(lines[1:idx], "\n")

			return []byte(header), lines[idx+1:], nil
		}
	}

	return nil, nil, errUnclosedFrontmatter
}

func ticketFromFrontmatter(fm *frontmatter) (*Ticket, error) {
	if fm.ID == "" {
		return nil, fmt.Errorf("%w: id", errMissingField)
	}

	if fm.Status == "" {
		return nil, fmt.Errorf("%w: status", errMissingField)
	}

	if !IsValidStatus(fm.Status) {
		return nil, fmt.Errorf("%w: status %q", errInvalidFieldValue, fm.Status)
	}

	if fm.Type == "" {
		return nil, fmt.Errorf("%w: type", errMissingField)
	}

	if !IsValidType(fm.Type) {
		return nil, fmt.Errorf("%w: type %q", errInvalidFieldValue, fm.Type)
	}

	if fm.Priority == nil {
		return nil, fmt.Errorf("%w: priority", errMissingField)
	}

	if !IsValidPriority(*fm.Priority) {
		return nil, fmt.Errorf("%w: priority %d (out of range)", errInvalidFieldValue, *fm.Priority)
	}

	if fm.Created == "" {
		return nil, fmt.Errorf("%w: created", errMissingField)
	}

	created, parseErr := time.Parse(time.RFC3339, fm.Created)
	if parseErr != nil {
		return nil, fmt.Errorf("%w: created %q", errInvalidFieldValue, fm.Created)
	}

	// Hand-edited files may lack the updated field; fall back to created.
	updated := created

	if fm.Updated != "" {
		updated, parseErr = time.Parse(time.RFC3339, fm.Updated)
		if parseErr != nil {
			return nil, fmt.Errorf("%w: updated %q", errInvalidFieldValue, fm.Updated)
		}
	}

	return &Ticket{
		ID:          fm.ID,
		Status:      fm.Status,
		Deps:        fm.Deps,
		Links:       fm.Links,
		Parent:      fm.Parent,
		Created:     created,
		Updated:     updated,
		Type:        fm.Type,
		Priority:    *fm.Priority,
		Assignee:    fm.Assignee,
		ExternalRef: fm.ExternalRef,
	}, nil
}

// parseBody extracts the title, free-text sections, and notes.
// Unknown "## " headers are kept as part of the surrounding section so
// arbitrary markdown in descriptions survives a round-trip.
func parseBody(tkt *Ticket, lines []string) error {
	const (
		sectionDescription = iota
		sectionDesign
		sectionAcceptance
		sectionNotes
	)

	section := sectionDescription

	var description, design, acceptance, notes []string

	for _, line := range lines {
		if tkt.Title == "" && strings.HasPrefix(line, "# ") {
			title := strings.TrimPrefix(line, "# ")
			if title == "" {
				return fmt.Errorf("%w: title (empty)", errInvalidFieldValue)
			}

			tkt.Title = title

			continue
		}

		switch line {
		case headerDesign:
			section = sectionDesign

			continue
		case headerAcceptance:
			section = sectionAcceptance

			continue
		case headerNotes:
			section = sectionNotes

			continue
		}

		switch section {
		case sectionDescription:
			description = append(description, line)
		case sectionDesign:
			design = append(design, line)
		case sectionAcceptance:
			acceptance = append(acceptance, line)
		case sectionNotes:
			notes = append(notes, line)
		}
	}

	tkt.Description = trimSection(description)
	tkt.Design = trimSection(design)
	tkt.Acceptance = trimSection(acceptance)

	parsedNotes, err := parseNotes(notes)
	if err != nil {
		return err
	}

	tkt.Notes = parsedNotes

	return nil
}

// trimSection joins section lines and strips surrounding blank lines
// added by Format.
func trimSection(lines []string) string {
	return strings.Trim(strings.Join(lines, "\n"), "\n")
}

// parseNotes parses the notes section. Each entry is a bullet
// "- <RFC3339>: text"; lines that don't start a bullet continue the
// previous note with their two-space indent stripped.
func parseNotes(lines []string) ([]Note, error) {
	var notes []Note

	for _, line := range lines {
		if strings.TrimSpace(line) == "" && len(notes) == 0 {
			continue
		}

		if strings.HasPrefix(line, "- ") {
			note, err := parseNoteBullet(line)
			if err != nil {
				return nil, err
			}

			notes = append(notes, note)

			continue
		}

		if len(notes) == 0 {
			return nil, fmt.Errorf("%w: %q", errInvalidNote, line)
		}

		last := &notes[len(notes)-1]
		last.Text += "\n" + strings.TrimPrefix(line, "  ")
	}

	// Trailing blank lines belong to Format's layout, not the note text.
	for idx := range notes {
		notes[idx].Text = strings.TrimRight(notes[idx].Text, "\n")
	}

	return notes, nil
}

func parseNoteBullet(line string) (Note, error) {
	entry := strings.TrimPrefix(line, "- ")

	timestamp, text, found := strings.Cut(entry, ": ")
	if !found {
		return Note{}, fmt.Errorf("%w: %q", errInvalidNote, line)
	}

	at, parseErr := time.Parse(time.RFC3339, timestamp)
	if parseErr != nil {
		return Note{}, fmt.Errorf("%w: timestamp %q", errInvalidNote, timestamp)
	}

	return Note{At: at, Text: text}, nil
}
