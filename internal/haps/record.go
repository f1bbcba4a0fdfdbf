package haps

import (
	"fmt"
	"strconv"

	"hapsindex/internal/indexer"
)

// Column layout of a .haps line (0-based, whitespace separated).
const (
	positionField      = 2
	firstGenotypeField = 5
	minFields          = firstGenotypeField + 1
)

// ParseRecord extracts the position and mutation flag from one raw line.
// line must include its terminator, since Size is taken from len(line).
// lineNo is only used for error reporting.
func ParseRecord(line []byte, lineNo int) (indexer.Record, error) {
	var (
		field   int
		pos     int64
		mutated bool
	)
	for i := 0; i < len(line); {
		for i < len(line) && isSpace(line[i]) {
			i++
		}
		if i == len(line) {
			break
		}
		j := i
		for j < len(line) && !isSpace(line[j]) {
			j++
		}
		tok := line[i:j]
		switch {
		case field == positionField:
			p, err := strconv.ParseInt(string(tok), 10, 64)
			if err != nil {
				return indexer.Record{}, indexer.NewMalformedRecordError(lineNo,
					fmt.Sprintf("position %q is not an integer", tok), err)
			}
			pos = p
		case field >= firstGenotypeField && !mutated:
			mutated = !isReference(tok)
		}
		field++
		i = j
	}
	if field < minFields {
		return indexer.Record{}, indexer.NewMalformedRecordError(lineNo,
			fmt.Sprintf("want at least %d fields, got %d", minFields, field), nil)
	}
	return indexer.Record{
		Line:     lineNo,
		Position: pos,
		Mutated:  mutated,
		Size:     int64(len(line)),
	}, nil
}

// isReference reports whether a genotype call is the reference allele "0".
func isReference(tok []byte) bool { return len(tok) == 1 && tok[0] == '0' }

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
