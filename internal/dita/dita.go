// Package dita holds the small slice of the DITA vocabulary that the chunk
// planner cares about: element class matching, the attributes that drive
// chunking, chunk-token parsing, and URI arithmetic over map-relative
// references.
//
// The planner never interprets topic markup beyond this surface. Documents
// are etree trees owned by the caller; helpers here read attributes and, in
// a few documented places, mutate them in place.
package dita

import (
	"strings"

	"github.com/beevik/etree"
)

// Class is a DITA class declaration, e.g. "- map/topicref ".
// Specialized elements carry their ancestry in the @class attribute, so
// matching is a substring test against the most specific module token.
type Class struct {
	decl string
}

func newClass(decl string) Class {
	return Class{decl: decl}
}

// Map vocabulary used by the planner.
var (
	MapMap       = newClass("- map/map ")
	MapTopicref  = newClass("- map/topicref ")
	MapTopicmeta = newClass("- map/topicmeta ")
	MapReltable  = newClass("- map/reltable ")
	MapNavref    = newClass("- map/navref ")
	MapShortdesc = newClass("- map/shortdesc ")

	MapgroupTopicgroup = newClass("+ map/topicref mapgroup-d/topicgroup ")
	MapgroupSubmap     = newClass("+ map/topicref mapgroup-d/submap ")

	TopicTopic     = newClass("- topic/topic ")
	TopicTitle     = newClass("- topic/title ")
	TopicShortdesc = newClass("- topic/shortdesc ")
	TopicNavtitle  = newClass("- topic/navtitle ")
)

// String returns the full class declaration, suitable for writing into a
// @class attribute.
func (c Class) String() string {
	return c.decl
}

// Matcher returns the most specific module token of the declaration,
// space-padded, e.g. " map/topicref " or " mapgroup-d/topicgroup ".
func (c Class) Matcher() string {
	fields := strings.Fields(c.decl)
	return " " + fields[len(fields)-1] + " "
}

// Matches reports whether the element's @class attribute declares this
// class anywhere in its ancestry.
func (c Class) Matches(e *etree.Element) bool {
	if e == nil {
		return false
	}
	return c.MatchesValue(e.SelectAttrValue(AttrClass, ""))
}

// MatchesValue reports whether a raw @class attribute value declares this
// class.
func (c Class) MatchesValue(class string) bool {
	return strings.Contains(class, c.Matcher())
}

// ChildElements returns the direct child elements of e matching class, in
// document order.
func ChildElements(e *etree.Element, class Class) []*etree.Element {
	var out []*etree.Element
	for _, child := range e.ChildElements() {
		if class.Matches(child) {
			out = append(out, child)
		}
	}
	return out
}

// FirstChildElement returns the first direct child element matching class,
// or nil.
func FirstChildElement(e *etree.Element, class Class) *etree.Element {
	for _, child := range e.ChildElements() {
		if class.Matches(child) {
			return child
		}
	}
	return nil
}

// ShallowCopy clones an element's tag and attributes without its children.
func ShallowCopy(e *etree.Element) *etree.Element {
	dup := etree.NewElement(e.Tag)
	dup.Space = e.Space
	for _, a := range e.Attr {
		dup.CreateAttr(attrKey(a), a.Value)
	}
	return dup
}

func attrKey(a etree.Attr) string {
	if a.Space != "" {
		return a.Space + ":" + a.Key
	}
	return a.Key
}
