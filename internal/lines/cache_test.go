package lines

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingBackend counts reads of the wrapped backend.
type countingBackend struct {
	*MemBackend
	reads atomic.Int64
}

func (c *countingBackend) Read(path string) ([]byte, error) {
	c.reads.Add(1)
	return c.MemBackend.Read(path)
}

func TestCache_ServesRepeatedReads(t *testing.T) {
	b := &countingBackend{MemBackend: NewMemBackend()}
	require.NoError(t, b.Write("f", []byte("a\nb\n")))

	f := Open("f", WithBackend(b), WithCache())
	assert.True(t, f.Cached())

	for i := 0; i < 5; i++ {
		_, err := f.ReadAll()
		require.NoError(t, err)
	}
	assert.Equal(t, int64(1), b.reads.Load())
}

func TestCache_ReadAfterOwnWrite(t *testing.T) {
	b := &countingBackend{MemBackend: NewMemBackend()}
	f := Open("f", WithBackend(b), WithCache())

	require.NoError(t, f.Append("a"))
	require.NoError(t, f.WriteAt("b", 2, false))
	ok, err := f.Replace("a", "c", Match{})
	require.NoError(t, err)
	require.True(t, ok)

	got, err := f.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "c\nb", got)

	// Writes refresh the cache, so only the first load hit the backend.
	assert.Equal(t, int64(1), b.reads.Load())
}

func TestCache_SeesExternalWrite(t *testing.T) {
	b := NewMemBackend()
	require.NoError(t, b.Write("f", []byte("a\n")))

	f := Open("f", WithBackend(b), WithCache())
	got, err := f.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "a", got)

	// Another engine on the same backend changes the file.
	other := Open("f", WithBackend(b))
	require.NoError(t, other.Append("b"))

	got, err = f.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "a\nb", got)
}

func TestCache_ResultsAreNotShared(t *testing.T) {
	f := Open("f", WithBackend(NewMemBackend()), WithCache())
	require.NoError(t, f.Append("a"))

	lines, err := f.Lines()
	require.NoError(t, err)
	lines[0] = "mutated"

	got, err := f.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "a", got)
}

func TestWatch_ReportsExternalChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "watched.txt")
	require.NoError(t, os.WriteFile(path, []byte("a\n"), 0644))

	f := Open(path, WithCache())
	_, err := f.ReadAll()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 16)
	done := make(chan error, 1)
	go func() {
		done <- f.Watch(ctx, func() { changed <- struct{}{} })
	}()

	// The watcher registers asynchronously; keep writing until it notices.
	deadline := time.After(5 * time.Second)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for seen := false; !seen; {
		select {
		case <-changed:
			seen = true
		case <-ticker.C:
			require.NoError(t, os.WriteFile(path, []byte("a\nb\n"), 0644))
		case <-deadline:
			t.Fatal("no change reported")
		}
	}

	got, err := f.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "a\nb", got)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestWatch_RequiresOSBackend(t *testing.T) {
	f := Open("f", WithBackend(NewMemBackend()))
	assert.Error(t, f.Watch(context.Background(), func() {}))
}
