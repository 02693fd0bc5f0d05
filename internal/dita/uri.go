package dita

import (
	"net/url"
	"path"
	"strings"
)

// ParseURI parses a reference attribute value. Empty and malformed values
// yield nil, matching the absent-attribute case.
func ParseURI(s string) *url.URL {
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil {
		return nil
	}
	return u
}

// FileURI builds a file: URI from an absolute slash path.
func FileURI(p string) *url.URL {
	return &url.URL{Scheme: "file", Path: p}
}

// Resolve resolves ref against base per RFC 3986.
func Resolve(base, ref *url.URL) *url.URL {
	if ref == nil {
		return nil
	}
	if base == nil {
		return ref
	}
	return base.ResolveReference(ref)
}

// ResolveString resolves a raw reference string against base.
func ResolveString(base *url.URL, ref string) *url.URL {
	return Resolve(base, ParseURI(ref))
}

// StripFragment returns a copy of u without its fragment.
func StripFragment(u *url.URL) *url.URL {
	if u == nil {
		return nil
	}
	dup := *u
	dup.Fragment = ""
	return &dup
}

// SetFragment returns a copy of u carrying the given fragment.
func SetFragment(u *url.URL, fragment string) *url.URL {
	if u == nil {
		return nil
	}
	dup := *u
	dup.Fragment = fragment
	return &dup
}

// IsAbs reports whether u is an absolute URI.
func IsAbs(u *url.URL) bool {
	return u != nil && u.IsAbs()
}

// BaseName returns the last path segment of u.
func BaseName(u *url.URL) string {
	return path.Base(u.Path)
}

// StripExtension removes the final extension from a filename.
func StripExtension(name string) string {
	ext := path.Ext(name)
	return strings.TrimSuffix(name, ext)
}

// ReplaceExtension swaps the final extension of a filename for ext
// (ext includes the leading dot).
func ReplaceExtension(name, ext string) string {
	return StripExtension(name) + ext
}

// RelativePath returns target expressed relative to the directory holding
// base. Both must share a scheme; the target's fragment is preserved.
func RelativePath(base, target *url.URL) *url.URL {
	baseDir := path.Dir(base.Path)
	baseSegs := splitPath(baseDir)
	targetSegs := splitPath(path.Dir(target.Path))

	common := 0
	for common < len(baseSegs) && common < len(targetSegs) && baseSegs[common] == targetSegs[common] {
		common++
	}

	var segs []string
	for i := common; i < len(baseSegs); i++ {
		segs = append(segs, "..")
	}
	segs = append(segs, targetSegs[common:]...)
	segs = append(segs, path.Base(target.Path))

	return &url.URL{Path: path.Join(segs...), Fragment: target.Fragment}
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" || p == "." {
		return nil
	}
	return strings.Split(p, "/")
}
