package haps

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"hapsindex/internal/indexer"
)

// Suffix is the extension of genotype input files.
const Suffix = ".haps"

// Compression identifies how an input file is encoded on disk.
type Compression int

const (
	Plain Compression = iota
	Gzip
	Zstd
	LZ4
)

func (c Compression) String() string {
	switch c {
	case Gzip:
		return "gzip"
	case Zstd:
		return "zstd"
	case LZ4:
		return "lz4"
	default:
		return "plain"
	}
}

var (
	magicGzip = []byte{0x1f, 0x8b}
	magicZstd = []byte{0x28, 0xb5, 0x2f, 0xfd}
	magicLZ4  = []byte{0x04, 0x22, 0x4d, 0x18}
)

// candidates are tried in order when resolving a prefix.
var candidates = []string{Suffix, Suffix + ".gz", Suffix + ".zst", Suffix + ".lz4"}

// Input is one file to index. The index is named after Prefix. An empty
// Path means Prefix was given bare and is resolved with Resolve.
type Input struct {
	Prefix string
	Path   string
}

// Locate returns the file to read for in.
func (in Input) Locate() (string, error) {
	if in.Path != "" {
		return in.Path, nil
	}
	return Resolve(in.Prefix)
}

// Resolve maps a prefix to the first existing input file. When none exists
// the error names the plain <prefix>.haps path.
func Resolve(prefix string) (string, error) {
	for _, ext := range candidates {
		p := prefix + ext
		st, err := os.Stat(p)
		if err == nil && !st.IsDir() {
			return p, nil
		}
	}
	plain := prefix + Suffix
	return "", indexer.NewIOError("open", plain, fs.ErrNotExist)
}

// multiReadCloser closes multiple io.Closers when Close() is called.
type multiReadCloser struct {
	io.Reader
	closers []io.Closer
}

func (m *multiReadCloser) Close() error {
	var err error
	for _, c := range m.closers {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// Open opens path for sequential reading, transparently decompressing
// gzip, zstd and lz4 frames detected by magic number. The input is never
// seeked, so pipes and FIFOs work.
func Open(path string) (io.ReadCloser, Compression, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, Plain, indexer.NewIOError("open", path, err)
	}
	adviseSequential(fh)

	br := bufio.NewReader(fh)
	head, _ := br.Peek(len(magicZstd))

	switch {
	case bytes.HasPrefix(head, magicGzip):
		gr, err := gzip.NewReader(br)
		if err != nil {
			_ = fh.Close()
			return nil, Gzip, indexer.NewIOError("open", path, fmt.Errorf("gzip: %w", err))
		}
		return &multiReadCloser{Reader: gr, closers: []io.Closer{gr, fh}}, Gzip, nil
	case bytes.HasPrefix(head, magicZstd):
		zr, err := zstd.NewReader(br, zstd.WithDecoderConcurrency(1))
		if err != nil {
			_ = fh.Close()
			return nil, Zstd, indexer.NewIOError("open", path, fmt.Errorf("zstd: %w", err))
		}
		zrc := zr.IOReadCloser()
		return &multiReadCloser{Reader: zrc, closers: []io.Closer{zrc, fh}}, Zstd, nil
	case bytes.HasPrefix(head, magicLZ4):
		return &multiReadCloser{Reader: lz4.NewReader(br), closers: []io.Closer{fh}}, LZ4, nil
	}
	return &multiReadCloser{Reader: br, closers: []io.Closer{fh}}, Plain, nil
}

// TrimSuffix strips a recognised input extension from path. ok is false
// when path does not name a .haps input.
func TrimSuffix(path string) (prefix string, ok bool) {
	for i := len(candidates) - 1; i >= 0; i-- {
		if p, found := strings.CutSuffix(path, candidates[i]); found {
			return p, true
		}
	}
	return path, false
}
