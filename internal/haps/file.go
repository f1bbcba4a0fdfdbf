package haps

import (
	"errors"
	"io"

	"hapsindex/internal/indexer"
)

// File is an opened .haps input. It satisfies indexer.Source.
type File struct {
	Path        string
	Compression Compression

	rc io.ReadCloser
	rd *Reader
}

// OpenFile opens path (see Open) and prepares it for record streaming.
func OpenFile(path string) (*File, error) {
	rc, comp, err := Open(path)
	if err != nil {
		return nil, err
	}
	return &File{Path: path, Compression: comp, rc: rc, rd: NewReader(rc)}, nil
}

// Next returns the next record or io.EOF. Read failures are reported as
// *indexer.IOError carrying the path.
func (f *File) Next() (indexer.Record, error) {
	rec, err := f.rd.Next()
	if err == nil || errors.Is(err, io.EOF) {
		return rec, err
	}
	var mre *indexer.MalformedRecordError
	if errors.As(err, &mre) {
		return rec, err
	}
	return rec, indexer.NewIOError("read", f.Path, err)
}

// Close releases the underlying file and decompressor.
func (f *File) Close() error { return f.rc.Close() }
