// Package job tracks the batch-wide set of files a build produces. Each
// pipeline stage that creates or renames content registers a FileInfo here;
// collision avoidance during chunk planning scans the full set of claimed
// result URIs.
//
// Two stores are provided: an in-memory store for single-shot runs and
// tests, and a SQLite-backed store so separate pipeline stages (planner,
// compositor, link rewriter) can share one registry across process
// boundaries.
package job

import (
	"net/url"
	"sync"
)

// FileInfo describes one file the batch produces.
type FileInfo struct {
	// URI is the file's temp-directory-relative location.
	URI string
	// Result is the absolute URI of the file's final output location.
	Result string
	// Format is the content format ("dita", "ditamap").
	Format string
}

// Store is the registry contract shared by the in-memory and SQLite
// implementations.
type Store interface {
	// Add registers a file, replacing any earlier entry with the same URI.
	Add(fi FileInfo) error
	// ResultURIs returns the set of every claimed result URI.
	ResultURIs() (map[string]struct{}, error)
	// ForResult returns the entry claiming the given result URI.
	ForResult(result *url.URL) (FileInfo, bool, error)
	// Close releases any backing resources.
	Close() error
}

// MemoryStore is a Store backed by process memory.
type MemoryStore struct {
	mu      sync.Mutex
	byURI   map[string]FileInfo
	ordered []string
}

// NewMemoryStore returns an empty in-memory registry.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byURI: make(map[string]FileInfo)}
}

// Add implements Store.
func (s *MemoryStore) Add(fi FileInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, seen := s.byURI[fi.URI]; !seen {
		s.ordered = append(s.ordered, fi.URI)
	}
	s.byURI[fi.URI] = fi
	return nil
}

// ResultURIs implements Store.
func (s *MemoryStore) ResultURIs() (map[string]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]struct{}, len(s.byURI))
	for _, fi := range s.byURI {
		out[fi.Result] = struct{}{}
	}
	return out, nil
}

// ForResult implements Store.
func (s *MemoryStore) ForResult(result *url.URL) (FileInfo, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	want := result.String()
	for _, uri := range s.ordered {
		if fi := s.byURI[uri]; fi.Result == want {
			return fi, true, nil
		}
	}
	return FileInfo{}, false, nil
}

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }
