package indexer

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIOError_UnwrapsPathError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.haps")
	_, oerr := os.Open(path)
	require.Error(t, oerr)

	err := NewIOError("open", path, oerr)
	var ioe *IOError
	require.ErrorAs(t, err, &ioe)
	assert.Equal(t, 1, strings.Count(err.Error(), path), err.Error())
	assert.Equal(t, 1, strings.Count(err.Error(), "open "), err.Error())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNewIOError_KeepsExisting(t *testing.T) {
	inner := NewIOError("read", "a.haps", errors.New("boom"))
	assert.Same(t, inner, NewIOError("open", "b.haps", inner))
	assert.NoError(t, NewIOError("open", "a.haps", nil))
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, `invalid segment length "0": must be > 0`,
		NewConfigError("segment length", "0", errors.New("must be > 0")).Error())
	assert.Equal(t, "line 3: malformed record: too few fields",
		NewMalformedRecordError(3, "too few fields", nil).Error())
}
