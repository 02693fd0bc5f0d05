package chunk

import (
	"net/url"

	"github.com/beevik/etree"

	"github.com/docfold/docfold/internal/dita"
)

// readByTopic parses the referenced content file independently of the main
// tree and appends a ByTopic operation mirroring its internal topic
// structure. A failed parse is logged and the operation is simply not
// emitted; the map traversal continues.
func (f *MapFilter) readByTopic(href *url.URL, sel string) {
	file := dita.StripFragment(dita.Resolve(f.currentFile, href))
	doc, err := f.parser.Parse(file)
	if err != nil {
		f.log.Error("failed to read topic for by-topic split", "href", href.String(), "error", err)
		return
	}
	op := f.walkByTopic(doc.Root(), file)
	op.Select = sel
	f.operations = append(f.operations, op)
}

// walkByTopic builds the split tree: one operation per topic element,
// depth-first in document order, each source fragment-qualified with the
// topic id.
func (f *MapFilter) walkByTopic(topic *etree.Element, src *url.URL) *Operation {
	id := dita.Value(topic, dita.AttrID)
	op := &Operation{Kind: ByTopic, Src: dita.SetFragment(src, id)}
	for _, child := range dita.ChildElements(topic, dita.TopicTopic) {
		op.AddChild(f.walkByTopic(child, src))
	}
	return op
}
