package writers

import (
	"bufio"
	"errors"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"hapsindex/internal/indexer"
)

const (
	indexPerm   = 0o644
	fileBufSize = 64 << 10
)

// IndexWriter receives the entries of one pass and publishes them only on
// Commit. A pass that ends in Abort leaves no index at the destination.
//
// File destinations are staged in a temporary file in the same directory
// and renamed into place. Stream destinations (stdout) are held in memory
// and written in one call.
type IndexWriter struct {
	path string // "" for streams

	tmp *os.File
	bw  *bufio.Writer

	stream io.Writer
	mem    []byte

	scratch []byte
	n       int
	closed  bool
}

// Create stages an index destined for path. Any existing file at path is
// left alone until Commit or Abort.
func Create(path string) (*IndexWriter, error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return nil, indexer.NewIOError("create", path, err)
	}
	return &IndexWriter{path: path, tmp: tmp, bw: bufio.NewWriterSize(tmp, fileBufSize)}, nil
}

// NewStream returns an IndexWriter that writes everything to w on Commit.
func NewStream(w io.Writer) *IndexWriter {
	return &IndexWriter{stream: w}
}

// Path is the final destination, or "-" for streams.
func (w *IndexWriter) Path() string {
	if w.path == "" {
		return "-"
	}
	return w.path
}

// Entries is the number of entries written so far.
func (w *IndexWriter) Entries() int { return w.n }

// Write appends one entry.
func (w *IndexWriter) Write(e indexer.Entry) error {
	w.n++
	if w.bw == nil {
		w.mem = e.AppendTSV(w.mem)
		return nil
	}
	w.scratch = e.AppendTSV(w.scratch[:0])
	if _, err := w.bw.Write(w.scratch); err != nil {
		return indexer.NewIOError("write", w.path, err)
	}
	return nil
}

// Commit publishes the index. An empty index still produces an empty file.
// If publishing fails, no index is left at the destination.
func (w *IndexWriter) Commit() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if w.bw == nil {
		if len(w.mem) == 0 {
			return nil
		}
		if _, err := w.stream.Write(w.mem); err != nil {
			return indexer.NewIOError("write", "-", err)
		}
		return nil
	}

	tmpPath := w.tmp.Name()
	fail := func(op string, err error) error {
		_ = w.tmp.Close()
		_ = os.Remove(tmpPath)
		_ = os.Remove(w.path)
		return indexer.NewIOError(op, w.path, err)
	}
	if err := w.bw.Flush(); err != nil {
		return fail("write", err)
	}
	if err := w.tmp.Chmod(indexPerm); err != nil {
		return fail("chmod", err)
	}
	if err := w.tmp.Sync(); err != nil {
		return fail("sync", err)
	}
	if err := w.tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		_ = os.Remove(w.path)
		return indexer.NewIOError("close", w.path, err)
	}
	if err := os.Rename(tmpPath, w.path); err != nil {
		_ = os.Remove(tmpPath)
		_ = os.Remove(w.path)
		return indexer.NewIOError("rename", w.path, err)
	}
	syncDir(filepath.Dir(w.path))
	return nil
}

// Abort discards staged entries and removes any stale index at the
// destination. Calling Abort after Commit is a no-op.
func (w *IndexWriter) Abort() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if w.bw == nil {
		w.mem = nil
		return nil
	}
	_ = w.tmp.Close()
	_ = os.Remove(w.tmp.Name())
	if err := os.Remove(w.path); err != nil && !os.IsNotExist(err) {
		return indexer.NewIOError("remove", w.path, err)
	}
	return nil
}

// syncDir best-effort fsyncs dir so the rename survives a crash.
func syncDir(dir string) {
	f, err := os.Open(dir)
	if err != nil {
		return
	}
	defer f.Close()
	_ = f.Sync()
}

// IsBrokenPipe reports whether err comes from a reader that went away,
// e.g. `hapsindex -o - ... | head`.
func IsBrokenPipe(err error) bool {
	return err != nil && (errors.Is(err, syscall.EPIPE) || errors.Is(err, io.ErrClosedPipe))
}
