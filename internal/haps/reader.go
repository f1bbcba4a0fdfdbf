package haps

import (
	"bufio"
	"errors"
	"io"

	"hapsindex/internal/indexer"
)

const readBufSize = 256 << 10

// Reader yields one indexer.Record per input line. Line terminators are
// kept in the byte accounting, so "\r\n" counts two bytes.
type Reader struct {
	br   *bufio.Reader
	buf  []byte
	line int
}

// NewReader wraps r. r is read sequentially and never seeked.
func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReaderSize(r, readBufSize)}
}

// Next returns the next record, or io.EOF after the last one.
func (r *Reader) Next() (indexer.Record, error) {
	raw, err := r.readLine()
	if err != nil {
		return indexer.Record{}, err
	}
	r.line++
	return ParseRecord(raw, r.line)
}

// Line is the 1-based number of the last line returned by Next.
func (r *Reader) Line() int { return r.line }

// readLine returns the next line including its '\n' (absent on a final
// unterminated line). The slice is valid until the following call.
func (r *Reader) readLine() ([]byte, error) {
	r.buf = r.buf[:0]
	for {
		frag, err := r.br.ReadSlice('\n')
		if errors.Is(err, bufio.ErrBufferFull) {
			r.buf = append(r.buf, frag...)
			continue
		}
		if len(r.buf) > 0 {
			r.buf = append(r.buf, frag...)
			frag = r.buf
		}
		switch {
		case err == nil:
			return frag, nil
		case errors.Is(err, io.EOF):
			if len(frag) == 0 {
				return nil, io.EOF
			}
			return frag, nil
		default:
			return nil, err
		}
	}
}
