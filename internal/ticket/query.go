package ticket

import "time"

// NoteRecord is the projection of a single note.
type NoteRecord struct {
	At   string `json:"at"`
	Text string `json:"text"`
}

// Record is the stable structured view of a ticket consumed by the
// external filter evaluator. Field names and types are part of the
// contract: they must not change between calls or releases, and the
// projection is lossless with respect to the stored record.
type Record struct {
	ID          string       `json:"id"`
	Status      string       `json:"status"`
	Deps        []string     `json:"deps"`
	Links       []string     `json:"links"`
	Parent      string       `json:"parent,omitempty"`
	Created     string       `json:"created"`
	Updated     string       `json:"updated"`
	Type        string       `json:"type"`
	Priority    int          `json:"priority"`
	Assignee    string       `json:"assignee,omitempty"`
	ExternalRef string       `json:"external-ref,omitempty"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Design      string       `json:"design,omitempty"`
	Acceptance  string       `json:"acceptance,omitempty"`
	Notes       []NoteRecord `json:"notes"`
}

// Project converts a ticket into its query record.
func Project(t *Ticket) Record {
	deps := t.Deps
	if deps == nil {
		deps = []string{}
	}

	links := t.Links
	if links == nil {
		links = []string{}
	}

	notes := make([]NoteRecord, 0, len(t.Notes))

	for _, note := range t.Notes {
		notes = append(notes, NoteRecord{
			At:   note.At.UTC().Format(time.RFC3339),
			Text: note.Text,
		})
	}

	return Record{
		ID:          t.ID,
		Status:      t.Status,
		Deps:        deps,
		Links:       links,
		Parent:      t.Parent,
		Created:     t.Created.UTC().Format(time.RFC3339),
		Updated:     t.Updated.UTC().Format(time.RFC3339),
		Type:        t.Type,
		Priority:    t.Priority,
		Assignee:    t.Assignee,
		ExternalRef: t.ExternalRef,
		Title:       t.Title,
		Description: t.Description,
		Design:      t.Design,
		Acceptance:  t.Acceptance,
		Notes:       notes,
	}
}
