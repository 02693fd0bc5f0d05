package dita

import (
	"strings"

	"github.com/beevik/etree"
)

// TopicmetaValue returns the text of the topicref's topicmeta child matching
// class (navtitle, shortdesc), or "" when the topicref carries no such
// metadata.
func TopicmetaValue(topicref *etree.Element, class Class) string {
	meta := FirstChildElement(topicref, MapTopicmeta)
	if meta == nil {
		return ""
	}
	elem := FirstChildElement(meta, class)
	if elem == nil {
		return ""
	}
	return strings.TrimSpace(text(elem))
}

// text collects the element's text content, descending into child elements
// in document order.
func text(e *etree.Element) string {
	var b strings.Builder
	for _, tok := range e.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			b.WriteString(t.Data)
		case *etree.Element:
			b.WriteString(text(t))
		}
	}
	return b.String()
}
