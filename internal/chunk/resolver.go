package chunk

import (
	"fmt"
	"net/url"

	"github.com/beevik/etree"
	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/docfold/docfold/internal/dita"
)

// Resolver is the content-existence oracle: it resolves map-relative
// references to absolute content URIs and reports whether the target is a
// real file.
type Resolver interface {
	Resolve(base *url.URL, ref string) *url.URL
	Exists(uri *url.URL) bool
}

// TopicParser loads a referenced content file as an independent tree, used
// mid-traversal for by-topic splits and whole-map stub creation.
type TopicParser interface {
	Parse(uri *url.URL) (*etree.Document, error)
}

// FSResolver resolves references against a billy filesystem. Paths inside
// file: URIs map directly onto filesystem paths.
type FSResolver struct {
	FS billy.Filesystem
}

// Resolve implements Resolver.
func (r *FSResolver) Resolve(base *url.URL, ref string) *url.URL {
	return dita.ResolveString(base, ref)
}

// Exists implements Resolver.
func (r *FSResolver) Exists(uri *url.URL) bool {
	if uri == nil {
		return false
	}
	_, err := r.FS.Stat(uri.Path)
	return err == nil
}

// FSTopicParser parses topic files from a billy filesystem with etree.
type FSTopicParser struct {
	FS billy.Filesystem
}

// Parse implements TopicParser. The fragment, if any, is ignored; callers
// strip it before resolving the file.
func (p *FSTopicParser) Parse(uri *url.URL) (*etree.Document, error) {
	data, err := util.ReadFile(p.FS, uri.Path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", uri, err)
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("parse %s: %w", uri, err)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("parse %s: no document element", uri)
	}
	return doc, nil
}
