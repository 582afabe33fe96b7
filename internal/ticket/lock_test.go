package ticket

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithTicketLockRewrites(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "tk-x.md")
	require.NoError(t, os.WriteFile(path, []byte("before"), 0o600))

	err := WithTicketLock(path, func(content []byte) ([]byte, error) {
		assert.Equal(t, "before", string(content))

		return []byte("after"), nil
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "after", string(data))
}

func TestWithTicketLockReadOnly(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "tk-x.md")
	require.NoError(t, os.WriteFile(path, []byte("original"), 0o600))

	err := WithTicketLock(path, func([]byte) ([]byte, error) {
		return nil, nil
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "original", string(data))
}

func TestWithTicketLockHandlerErrorAbortsWrite(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "tk-x.md")
	require.NoError(t, os.WriteFile(path, []byte("original"), 0o600))

	sentinel := assert.AnError

	err := WithTicketLock(path, func([]byte) ([]byte, error) {
		return []byte("never written"), sentinel
	})
	require.ErrorIs(t, err, sentinel)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "original", string(data))
}

func TestWithTicketLockSerializesWriters(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "tk-x.md")
	require.NoError(t, os.WriteFile(path, []byte(""), 0o600))

	const writers = 16

	var wg sync.WaitGroup

	for i := 0; i < writers; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			err := WithTicketLock(path, func(content []byte) ([]byte, error) {
				return append(content, 'x'), nil
			})
			assert.NoError(t, err)
		}()
	}

	wg.Wait()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, data, writers, "every increment must survive")
}

func TestWithLockReleasesLockFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "create")

	require.NoError(t, WithLock(path, func() error { return nil }))

	_, statErr := os.Stat(filepath.Join(dir, locksDirName, "create.lock"))
	assert.True(t, os.IsNotExist(statErr), "lock file should be removed on release")
}
