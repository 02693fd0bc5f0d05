package chunk

import (
	"net/url"

	"github.com/beevik/etree"

	"github.com/docfold/docfold/internal/dita"
	"github.com/docfold/docfold/internal/job"
)

// generateStubTopic fabricates a backing content unit for a to-content
// topicref that has neither href nor copy-to. It writes the stub, registers
// the claimed output location with the batch registry, rewrites the node's
// @href relative to the stub-map anchor, and returns that relative URI.
//
// Write failures are logged and do not stop the traversal; the href rewrite
// happens regardless, so callers must treat the stub file as best-effort.
func (f *MapFilter) generateStubTopic(topicref *etree.Element) *url.URL {
	result := f.resultFile(topicref)
	temp := f.scheme.TempFileName(result)
	absTemp := dita.ResolveString(f.tempDir, temp)

	name := dita.StripExtension(dita.BaseName(result))
	navtitle := dita.TopicmetaValue(topicref, dita.TopicNavtitle)
	if navtitle == "" {
		navtitle = dita.Value(topicref, dita.AttrNavtitle)
	}
	shortDesc := dita.TopicmetaValue(topicref, dita.MapShortdesc)

	f.writeStub(absTemp, name, navtitle, shortDesc)

	rel := dita.RelativePath(dita.ResolveString(f.currentFile, StubMapName), absTemp)
	topicref.CreateAttr(dita.AttrHref, rel.String())
	if dita.MapgroupTopicgroup.Matches(topicref) {
		// A topicgroup with synthesized content is no longer a pure
		// structural group.
		topicref.CreateAttr(dita.AttrClass, dita.MapTopicref.String())
	}

	if err := f.store.Add(job.FileInfo{URI: temp, Result: result.String(), Format: dita.FormatDita}); err != nil {
		f.log.Error("failed to register stub topic", "result", result.String(), "error", err)
	}
	return rel
}

// resultFile picks the stub's final output location: copy-to if present,
// else the node id, else a generated name retried against every output
// location already claimed anywhere in the batch.
func (f *MapFilter) resultFile(topicref *etree.Element) *url.URL {
	if copyTo := dita.ParseURI(dita.Value(topicref, dita.AttrCopyTo)); copyTo != nil {
		return dita.Resolve(f.currentFile, copyTo)
	}
	if id := dita.Value(topicref, dita.AttrID); id != "" {
		return dita.ResolveString(f.currentFile, id+extDita)
	}

	claimed, err := f.store.ResultURIs()
	if err != nil {
		f.log.Error("failed to read claimed result URIs", "error", err)
		claimed = map[string]struct{}{}
	}
	for {
		candidate := dita.ResolveString(f.currentFile, f.gen.Generate(chunkPrefix, extDita))
		if _, taken := claimed[candidate.String()]; !taken {
			return candidate
		}
	}
}

// writeStub emits the minimal placeholder unit: an untitled <dita/> shell
// when there is no metadata at all, otherwise a topic carrying id, title
// and optional shortdesc.
func (f *MapFilter) writeStub(target *url.URL, id, title, shortDesc string) {
	doc := etree.NewDocument()
	doc.CreateProcInst(xmlDeclTarget, xmlDeclInst)

	if title == "" && shortDesc == "" {
		shell := doc.CreateElement("dita")
		shell.CreateAttr(dita.DitaArchNamespaceAttr, dita.DitaArchNamespace)
		shell.CreateAttr(dita.DitaArchVersionAttr, dita.DitaArchVersion)
	} else {
		topic := doc.CreateElement("topic")
		topic.CreateAttr(dita.DitaArchNamespaceAttr, dita.DitaArchNamespace)
		topic.CreateAttr(dita.DitaArchVersionAttr, dita.DitaArchVersion)
		topic.CreateAttr(dita.AttrID, id)
		topic.CreateAttr(dita.AttrClass, dita.TopicTopic.String())
		topic.CreateAttr(dita.AttrDomains, "")

		titleElem := topic.CreateElement("title")
		titleElem.CreateAttr(dita.AttrClass, dita.TopicTitle.String())
		titleElem.SetText(title)

		if shortDesc != "" {
			sd := topic.CreateElement("shortdesc")
			sd.CreateAttr(dita.AttrClass, dita.TopicShortdesc.String())
			sd.SetText(shortDesc)
		}
	}

	if err := dita.WriteDocument(f.fs, target.Path, doc); err != nil {
		f.log.Error("failed to write stub topic", "file", target.String(), "error", err)
	}
}
