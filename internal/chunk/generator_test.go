package chunk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilenameGenerator(t *testing.T) {
	g := NewFilenameGenerator()
	assert.Equal(t, "Chunk0.dita", g.Generate("Chunk", ".dita"))
	assert.Equal(t, "Chunk1.dita", g.Generate("Chunk", ".dita"))
	// Prefixes share one counter, so names never collide across kinds.
	assert.Equal(t, "MAPCHUNK2.ditamap", g.Generate("MAPCHUNK", ".ditamap"))
}
