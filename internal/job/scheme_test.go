package job

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScheme_Unknown(t *testing.T) {
	_, err := NewScheme("nope", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownScheme)
	assert.Contains(t, err.Error(), `"nope"`)
}

func TestDefaultScheme(t *testing.T) {
	base := mustURI(t, "file:///src/")
	scheme, err := NewScheme("default", base)
	require.NoError(t, err)

	// Inside the base tree the relative path is preserved.
	assert.Equal(t, "a.dita", scheme.TempFileName(mustURI(t, "file:///src/a.dita")))
	assert.Equal(t, "sub/b.dita", scheme.TempFileName(mustURI(t, "file:///src/sub/b.dita")))
	// Outside it, only the basename survives.
	assert.Equal(t, "c.dita", scheme.TempFileName(mustURI(t, "file:///elsewhere/c.dita")))
}

func TestHashScheme(t *testing.T) {
	scheme, err := NewScheme("hash", nil)
	require.NoError(t, err)

	a := scheme.TempFileName(mustURI(t, "file:///src/a.dita"))
	b := scheme.TempFileName(mustURI(t, "file:///src/b.dita"))

	assert.NotEqual(t, a, b)
	// Deterministic within a batch.
	assert.Equal(t, a, scheme.TempFileName(mustURI(t, "file:///src/a.dita")))
	assert.Regexp(t, `^[0-9a-f]{40}\.dita$`, a)
}
