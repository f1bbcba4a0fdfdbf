package indexer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// DefaultThreshold is the mutation count a segment needs to be indexed.
const DefaultThreshold = 100

// ctxCheckEvery bounds how many records are consumed between ctx checks.
const ctxCheckEvery = 4096

// Record is the part of a variant line the indexer looks at.
type Record struct {
	Line     int   // 1-based, for diagnostics
	Position int64 // genomic coordinate
	Mutated  bool  // any genotype call other than "0"
	Size     int64 // encoded length of the line, terminator included
}

// Source yields records in file order and io.EOF after the last one.
type Source interface {
	Next() (Record, error)
}

// Entry is one line of the index file.
type Entry struct {
	SegmentStart int64
	Offset       int64
}

// AppendTSV appends "start\toffset\n" to b.
func (e Entry) AppendTSV(b []byte) []byte {
	b = strconv.AppendInt(b, e.SegmentStart, 10)
	b = append(b, '\t')
	b = strconv.AppendInt(b, e.Offset, 10)
	return append(b, '\n')
}

// Config holds the indexing parameters.
type Config struct {
	SegmentLength int64
	Threshold     int
}

// Validate reports a *ConfigError for unusable parameters.
func (c Config) Validate() error {
	if c.SegmentLength <= 0 {
		return NewConfigError("segment length", strconv.FormatInt(c.SegmentLength, 10), errors.New("must be > 0"))
	}
	if c.Threshold < 0 {
		return NewConfigError("mutation threshold", strconv.Itoa(c.Threshold), errors.New("must be >= 0"))
	}
	return nil
}

// ParseSegmentLength accepts integer or float notation ("1000", "1e6",
// "2500.0") as long as the value is a positive whole number.
func ParseSegmentLength(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n <= 0 {
			return 0, NewConfigError("segment length", s, errors.New("must be > 0"))
		}
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, NewConfigError("segment length", s, errors.New("not a number"))
	}
	switch {
	case math.IsNaN(f) || math.IsInf(f, 0):
		return 0, NewConfigError("segment length", s, errors.New("not finite"))
	case f <= 0:
		return 0, NewConfigError("segment length", s, errors.New("must be > 0"))
	case f != math.Trunc(f):
		return 0, NewConfigError("segment length", s, errors.New("must be a whole number"))
	case f > 1<<53:
		return 0, NewConfigError("segment length", s, errors.New("too large"))
	}
	return int64(f), nil
}

// SegmentStart returns floor(pos/length)*length.
func SegmentStart(pos, length int64) int64 {
	k := pos / length
	if pos%length != 0 && pos < 0 {
		k--
	}
	return k * length
}

// Stats summarizes one pass.
type Stats struct {
	Records  int64 // lines consumed
	Mutated  int64 // lines with at least one non-reference call
	Bytes    int64 // bytes consumed
	Segments int   // distinct segments seen
	Indexed  int   // entries emitted
}

// Pass is the per-run state machine. The zero value is not usable; call
// NewPass.
type Pass struct {
	cfg Config

	open   bool // a segment has been seen
	start  int64
	offset int64
	count  int

	stats Stats
}

// NewPass validates cfg and returns a fresh pass.
func NewPass(cfg Config) (*Pass, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Pass{cfg: cfg}, nil
}

// Add consumes one record. When the record opens a new segment and the
// previous one qualifies, the previous segment's entry is returned with
// ok=true. The entry's offset excludes rec itself.
func (p *Pass) Add(rec Record) (e Entry, ok bool, err error) {
	start := SegmentStart(rec.Position, p.cfg.SegmentLength)
	if !p.open || start != p.start {
		if p.open {
			if start < p.start {
				return Entry{}, false, NewMalformedRecordError(rec.Line,
					fmt.Sprintf("position %d falls before open segment %d", rec.Position, p.start), ErrUnsorted)
			}
			e, ok = p.close()
		}
		p.open = true
		p.start = start
		p.count = 0
		p.stats.Segments++
	}
	if rec.Mutated {
		p.count++
		p.stats.Mutated++
	}
	p.offset += rec.Size
	p.stats.Records++
	p.stats.Bytes = p.offset
	return e, ok, nil
}

// Finish closes the last segment. It returns ok=false when no record was
// seen or the last segment falls short of the threshold.
func (p *Pass) Finish() (Entry, bool) {
	if !p.open {
		return Entry{}, false
	}
	p.open = false
	return p.close()
}

// Stats returns the counters accumulated so far.
func (p *Pass) Stats() Stats { return p.stats }

func (p *Pass) close() (Entry, bool) {
	if p.count < p.cfg.Threshold {
		return Entry{}, false
	}
	p.stats.Indexed++
	return Entry{SegmentStart: p.start, Offset: p.offset}, true
}

// Build drains src through a new Pass, calling emit for every qualifying
// segment in increasing start order. Any error aborts the pass; entries
// already handed to emit must then be discarded by the caller.
func Build(ctx context.Context, src Source, cfg Config, emit func(Entry) error, opts ...Option) (Stats, error) {
	p, err := NewPass(cfg)
	if err != nil {
		return Stats{}, err
	}
	o := options{}
	for _, fn := range opts {
		fn(&o)
	}

	for n := int64(0); ; n++ {
		if n%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return p.stats, err
			}
		}
		rec, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return p.stats, err
		}
		e, ok, err := p.Add(rec)
		if err != nil {
			return p.stats, err
		}
		if ok {
			if err := emit(e); err != nil {
				return p.stats, err
			}
		}
		if o.progress != nil && p.stats.Records%o.progressEvery == 0 {
			o.progress(p.stats)
		}
	}

	if e, ok := p.Finish(); ok {
		if err := emit(e); err != nil {
			return p.stats, err
		}
	}
	return p.stats, nil
}
