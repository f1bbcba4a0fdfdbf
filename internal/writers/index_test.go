package writers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hapsindex/internal/indexer"
)

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	ents, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range ents {
		names = append(names, e.Name())
	}
	return names
}

func TestIndexWriter_CommitReplacesDestination(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "x.index")
	require.NoError(t, os.WriteFile(dest, []byte("stale\n"), 0o644))

	w, err := Create(dest)
	require.NoError(t, err)
	require.NoError(t, w.Write(indexer.Entry{SegmentStart: 0, Offset: 10}))
	require.NoError(t, w.Write(indexer.Entry{SegmentStart: 5000, Offset: 987654}))

	// Not visible before commit.
	b, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "stale\n", string(b))

	require.NoError(t, w.Commit())
	b, err = os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "0\t10\n5000\t987654\n", string(b))
	assert.Equal(t, 2, w.Entries())
	assert.Equal(t, []string{"x.index"}, listDir(t, dir))
}

func TestIndexWriter_EmptyCommitTruncates(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "x.index")
	require.NoError(t, os.WriteFile(dest, []byte("stale\n"), 0o644))
	w, err := Create(dest)
	require.NoError(t, err)
	require.NoError(t, w.Commit())
	st, err := os.Stat(dest)
	require.NoError(t, err)
	assert.Zero(t, st.Size())
}

func TestIndexWriter_AbortLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "x.index")
	require.NoError(t, os.WriteFile(dest, []byte("stale\n"), 0o644))

	w, err := Create(dest)
	require.NoError(t, err)
	require.NoError(t, w.Write(indexer.Entry{SegmentStart: 1, Offset: 2}))
	require.NoError(t, w.Abort())

	assert.Empty(t, listDir(t, dir))
	assert.NoError(t, w.Commit(), "commit after abort is a no-op")
	assert.Empty(t, listDir(t, dir))
}

func TestIndexWriter_CreateInMissingDir(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "missing", "x.index")
	_, err := Create(dest)
	var ioe *indexer.IOError
	require.ErrorAs(t, err, &ioe)
	assert.Equal(t, dest, ioe.Path)
}

func TestIndexWriter_StreamWritesOnceOnCommit(t *testing.T) {
	var buf bytes.Buffer
	w := NewStream(&buf)
	require.NoError(t, w.Write(indexer.Entry{SegmentStart: 1000, Offset: 50}))
	assert.Zero(t, buf.Len())
	require.NoError(t, w.Commit())
	assert.Equal(t, "1000\t50\n", buf.String())
	assert.Equal(t, "-", w.Path())
}

func TestIndexWriter_StreamAbortWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	w := NewStream(&buf)
	require.NoError(t, w.Write(indexer.Entry{SegmentStart: 1000, Offset: 50}))
	require.NoError(t, w.Abort())
	require.NoError(t, w.Commit())
	assert.Zero(t, buf.Len())
}

type pipeWriter struct{}

func (pipeWriter) Write([]byte) (int, error) { return 0, syscall.EPIPE }

func TestIsBrokenPipe(t *testing.T) {
	w := NewStream(pipeWriter{})
	require.NoError(t, w.Write(indexer.Entry{SegmentStart: 1, Offset: 1}))
	err := w.Commit()
	require.Error(t, err)
	assert.True(t, IsBrokenPipe(err))
	assert.True(t, IsBrokenPipe(fmt.Errorf("wrap: %w", io.ErrClosedPipe)))
	assert.False(t, IsBrokenPipe(errors.New("other")))
	assert.False(t, IsBrokenPipe(nil))
}

func TestIndexWriter_WriteErrorNamesDestination(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "chr1.index")
	w, err := Create(dest)
	require.NoError(t, err)
	require.NoError(t, w.tmp.Close())

	// Enough entries to overflow the buffer and hit the closed file.
	for i := int64(0); err == nil && i < fileBufSize; i++ {
		err = w.Write(indexer.Entry{SegmentStart: i * 1000, Offset: i * 10})
	}
	var ioe *indexer.IOError
	require.ErrorAs(t, err, &ioe)
	assert.Equal(t, dest, ioe.Path)
	assert.NotContains(t, err.Error(), ".tmp-")
	require.NoError(t, w.Abort())
	assert.Empty(t, listDir(t, filepath.Dir(dest)))
}
