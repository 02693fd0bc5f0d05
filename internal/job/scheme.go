package job

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
)

// ErrUnknownScheme is returned when a naming scheme identifier has no
// registered factory. This aborts a run before any traversal begins.
var ErrUnknownScheme = errors.New("unknown temp-file naming scheme")

// Scheme maps a final result URI to a temp-directory-relative path.
// Implementations must be deterministic: the same result URI always maps to
// the same temp path within one batch.
type Scheme interface {
	TempFileName(result *url.URL) string
}

// SchemeFactory builds a Scheme rooted at the batch input directory.
type SchemeFactory func(base *url.URL) Scheme

var schemes = map[string]SchemeFactory{
	"default": func(base *url.URL) Scheme { return &relativeScheme{base: base} },
	"hash":    func(base *url.URL) Scheme { return &hashScheme{} },
}

// NewScheme resolves a scheme identifier against the registry.
func NewScheme(name string, base *url.URL) (Scheme, error) {
	factory, ok := schemes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownScheme, name)
	}
	return factory(base), nil
}

// relativeScheme preserves the result's path relative to the input
// directory, keeping the temp tree shaped like the source tree.
type relativeScheme struct {
	base *url.URL
}

func (s *relativeScheme) TempFileName(result *url.URL) string {
	if s.base != nil {
		basePath := strings.TrimSuffix(s.base.Path, "/") + "/"
		if rel := strings.TrimPrefix(result.Path, basePath); rel != result.Path {
			return rel
		}
	}
	return path.Base(result.Path)
}

// hashScheme flattens results into content-address-style names, which keeps
// temp paths short and collision-free even for deep source trees.
type hashScheme struct{}

func (s *hashScheme) TempFileName(result *url.URL) string {
	sum := sha1.Sum([]byte(result.String()))
	return hex.EncodeToString(sum[:]) + path.Ext(result.Path)
}
