package chunk

import (
	"fmt"
	"sync/atomic"
)

// FilenameGenerator produces collision-resistant candidate filenames from a
// prefix and extension. Each run of the planner owns its own generator;
// sharing one across concurrent runs is the caller's coordination problem.
type FilenameGenerator struct {
	next atomic.Uint64
}

// NewFilenameGenerator returns a generator starting at index 0.
func NewFilenameGenerator() *FilenameGenerator {
	return &FilenameGenerator{}
}

// Generate returns the next candidate name, e.g. Generate("Chunk", ".dita")
// yields "Chunk0.dita", "Chunk1.dita", ...
func (g *FilenameGenerator) Generate(prefix, ext string) string {
	n := g.next.Add(1) - 1
	return fmt.Sprintf("%s%d%s", prefix, n, ext)
}
