package ticket

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTestTicket writes a minimal valid ticket file directly, bypassing
// the store.
func writeTestTicket(t *testing.T, dir, id string) {
	t.Helper()

	tkt := New("ticket " + id)
	tkt.ID = id

	require.NoError(t, os.MkdirAll(dir, 0o750))
	require.NoError(t, os.WriteFile(Path(dir, id), []byte(Format(tkt)), 0o600))
}

func newTestStore(t *testing.T) *Store {
	t.Helper()

	return NewStore(t.TempDir(), "tk")
}

func TestStoreCreateAndLoad(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	tkt := New("First ticket")
	tkt.Description = "Some body text."

	id, err := store.Create(tkt)
	require.NoError(t, err)
	require.NotEmpty(t, id)
	assert.Contains(t, id, "tk-")

	loaded, err := store.Load(id)
	require.NoError(t, err)
	assert.Equal(t, "First ticket", loaded.Title)
	assert.Equal(t, StatusOpen, loaded.Status)
	assert.Equal(t, DefaultPriority, loaded.Priority)
	assert.Equal(t, "Some body text.", loaded.Description)
}

func TestStoreCreateRejectsInvalid(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	_, err := store.Create(&Ticket{Status: StatusOpen, Type: TypeTask})
	require.ErrorIs(t, err, ErrTitleRequired)

	bad := New("Bad priority")
	bad.Priority = 7

	_, err = store.Create(bad)
	require.ErrorIs(t, err, ErrInvalidPriority)
}

func TestStoreLoadNotFound(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	_, err := store.Load("tk-nope")
	require.ErrorIs(t, err, ErrTicketNotFound)
}

func TestStoreUpdateBumpsUpdated(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	id, err := store.Create(New("Mutable"))
	require.NoError(t, err)

	before, err := store.Load(id)
	require.NoError(t, err)

	// Rewind the file so the bump is observable at second granularity.
	past := before.Created.Add(-time.Hour).Format(time.RFC3339)
	content := string(mustRead(t, Path(store.Dir, id)))
	content = replaceLine(content, "updated: ", "updated: "+past)
	require.NoError(t, os.WriteFile(Path(store.Dir, id), []byte(content), 0o600))

	require.NoError(t, store.Update(id, func(tkt *Ticket) error {
		tkt.Description = "changed"

		return nil
	}))

	after, err := store.Load(id)
	require.NoError(t, err)
	assert.Equal(t, "changed", after.Description)
	assert.True(t, after.Updated.After(before.Created.Add(-time.Hour)))
}

func TestStoreUpdateMissing(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	err := store.Update("tk-ghost", func(*Ticket) error { return nil })
	require.ErrorIs(t, err, ErrTicketNotFound)
}

func TestStoreListOrderAndMalformed(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	require.NoError(t, os.MkdirAll(store.Dir, 0o750))

	older := New("Older")
	older.ID = "tk-aaaa"
	older.Created = older.Created.Add(-2 * time.Hour)
	older.Updated = older.Created
	require.NoError(t, os.WriteFile(Path(store.Dir, older.ID), []byte(Format(older)), 0o600))

	newer := New("Newer")
	newer.ID = "tk-bbbb"
	require.NoError(t, os.WriteFile(Path(store.Dir, newer.ID), []byte(Format(newer)), 0o600))

	// Malformed file, plus noise the listing must skip.
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir, "tk-bad.md"), []byte("not a ticket"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir, ".hidden.md"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(store.Dir, "README.txt"), []byte("x"), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(store.Dir, ".locks"), 0o750))

	results, err := store.List()
	require.NoError(t, err)
	require.Len(t, results, 3)

	var ids []string

	var malformed int

	for _, res := range results {
		if res.Err != nil {
			malformed++

			continue
		}

		ids = append(ids, res.Ticket.ID)
	}

	assert.Equal(t, 1, malformed)
	assert.Equal(t, []string{"tk-aaaa", "tk-bbbb"}, ids)
}

func TestStoreListEmptyDir(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	results, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestStoreResolve(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	writeTestTicket(t, store.Dir, "tk-ab12")
	writeTestTicket(t, store.Dir, "tk-ab34")
	writeTestTicket(t, store.Dir, "tk-cd56")

	t.Run("exact", func(t *testing.T) {
		t.Parallel()

		id, err := store.Resolve("tk-ab12")
		require.NoError(t, err)
		assert.Equal(t, "tk-ab12", id)
	})

	t.Run("unique substring", func(t *testing.T) {
		t.Parallel()

		id, err := store.Resolve("cd")
		require.NoError(t, err)
		assert.Equal(t, "tk-cd56", id)
	})

	t.Run("ambiguous lists candidates", func(t *testing.T) {
		t.Parallel()

		_, err := store.Resolve("ab")
		require.Error(t, err)

		var ambiguous *AmbiguousIDError

		require.ErrorAs(t, err, &ambiguous)
		assert.Equal(t, []string{"tk-ab12", "tk-ab34"}, ambiguous.Matches)
		assert.Contains(t, err.Error(), "tk-ab12")
		assert.Contains(t, err.Error(), "tk-ab34")
	})

	t.Run("no match", func(t *testing.T) {
		t.Parallel()

		_, err := store.Resolve("zz")
		require.ErrorIs(t, err, ErrTicketNotFound)
	})

	t.Run("empty", func(t *testing.T) {
		t.Parallel()

		_, err := store.Resolve("")
		require.ErrorIs(t, err, ErrIDRequired)
	})
}

func TestStoreResolveExactWinsOverSubstring(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	// "tk-ab" is both a full ID and a substring of "tk-ab12".
	writeTestTicket(t, store.Dir, "tk-ab")
	writeTestTicket(t, store.Dir, "tk-ab12")

	id, err := store.Resolve("tk-ab")
	require.NoError(t, err)
	assert.Equal(t, "tk-ab", id)
}

func mustRead(t *testing.T, path string) []byte {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	return data
}

// replaceLine swaps the single line starting with prefix for repl.
func replaceLine(content, prefix, repl string) string {
	lines := strings.Split(content, "\n")
	for idx, line := range lines {
		if strings.HasPrefix(line, prefix) {
			lines[idx] = repl
		}
	}

	return strings.Join(lines, "\n")
}
