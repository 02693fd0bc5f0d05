package chunk

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/beevik/etree"
	billy "github.com/go-git/go-billy/v5"

	"github.com/docfold/docfold/internal/dita"
	"github.com/docfold/docfold/internal/job"
)

const (
	// StubMapName anchors relative href rewrites: generated hrefs are
	// expressed relative to this location next to the processed map.
	StubMapName = "stub.ditamap"

	chunkPrefix    = "Chunk"
	mapChunkPrefix = "MAPCHUNK"
	extDita        = ".dita"
	extDitamap     = ".ditamap"

	xmlDeclTarget = "xml"
	xmlDeclInst   = `version="1.0" encoding="UTF-8"`
)

// Options wires a MapFilter's collaborators. FS is the only required
// field; everything else has a working default.
type Options struct {
	// FS backs existence checks, secondary topic parses and side-effect
	// writes (stubs, navigation maps). Use memfs in tests.
	FS billy.Filesystem
	// Resolver overrides the default FS-backed existence oracle.
	Resolver Resolver
	// Parser overrides the default FS-backed topic parser.
	Parser TopicParser
	// Store is the batch-wide file registry. Defaults to a fresh
	// in-memory store owned by this run.
	Store job.Store
	// Scheme maps result URIs to temp paths. Defaults to the "default"
	// scheme rooted at the map's directory.
	Scheme job.Scheme
	// TempDir is the URI of the temp directory stub topics are written
	// under. Defaults to the map's directory.
	TempDir *url.URL
	// Logger receives per-node warnings and contained errors.
	Logger *slog.Logger
	// RootChunkOverride, when non-empty, replaces the root's @chunk
	// token set before processing begins.
	RootChunkOverride []string
	// Navigation enables to-navigation extraction support.
	Navigation bool
	// Generator supplies candidate filenames. Runs processed in parallel
	// must not share one.
	Generator *FilenameGenerator
}

// MapFilter is the chunk-planning pass over one map document. It is
// single-use and strictly sequential: construct, call Process once, read
// the Result.
type MapFilter struct {
	fs         billy.Filesystem
	resolver   Resolver
	parser     TopicParser
	store      job.Store
	scheme     job.Scheme
	tempDir    *url.URL
	log        *slog.Logger
	override   []string
	navigation bool
	gen        *FilenameGenerator

	currentFile *url.URL
	defaultBy   string

	changes     *changeTable
	conflicts   map[string]string
	chunkTopics map[string]struct{}
	operations  []*Operation

	piWorkdir      *etree.ProcInst
	piWorkdirURI   *etree.ProcInst
	piPath2Proj    *etree.ProcInst
	piPath2ProjURI *etree.ProcInst
	piPath2RootURI *etree.ProcInst
}

// Result is the read-only outcome of one run. The rewritten document is a
// fresh tree; the input tree's nodes were mutated in place where directives
// demanded it (href rewrites, class reclassification, navigation detach).
type Result struct {
	// Doc is the rewritten map: preserved processing instructions
	// followed by the mutated root subtree.
	Doc *etree.Document
	// Operations is the ordered chunk-operation list for the compositor.
	Operations []*Operation
	// ChangeTable maps original absolute content URIs to final ones.
	// Identity entries mark claimed-but-unchanged locations.
	ChangeTable map[string]string
	// ConflictTable maps newly chosen URIs to the URI each displaced.
	ConflictTable map[string]string
	// ChunkTopics is the set of content URIs reachable under an active,
	// non-disabled chunk scope.
	ChunkTopics map[string]struct{}
}

// NewMapFilter builds a filter from opts, applying defaults.
func NewMapFilter(opts Options) *MapFilter {
	f := &MapFilter{
		fs:          opts.FS,
		resolver:    opts.Resolver,
		parser:      opts.Parser,
		store:       opts.Store,
		scheme:      opts.Scheme,
		tempDir:     opts.TempDir,
		log:         opts.Logger,
		override:    opts.RootChunkOverride,
		navigation:  opts.Navigation,
		gen:         opts.Generator,
		changes:     newChangeTable(),
		conflicts:   make(map[string]string),
		chunkTopics: make(map[string]struct{}),
	}
	if f.resolver == nil {
		f.resolver = &FSResolver{FS: opts.FS}
	}
	if f.parser == nil {
		f.parser = &FSTopicParser{FS: opts.FS}
	}
	if f.store == nil {
		f.store = job.NewMemoryStore()
	}
	if f.log == nil {
		f.log = slog.Default()
	}
	if f.gen == nil {
		f.gen = NewFilenameGenerator()
	}
	return f
}

// Process runs the pass over doc, which must be the parsed map located at
// mapURI (absolute). The walk is deterministic, depth-first and
// left-to-right; per-node failures are logged and contained, so a returned
// Result is self-consistent even after partial failures.
func (f *MapFilter) Process(doc *etree.Document, mapURI *url.URL) (*Result, error) {
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("process %s: map has no document element", mapURI)
	}
	if !dita.IsAbs(mapURI) {
		return nil, fmt.Errorf("process: map URI %q is not absolute", mapURI)
	}
	f.currentFile = mapURI

	mapDir := dita.Resolve(mapURI, dita.ParseURI("."))
	if f.tempDir == nil {
		f.tempDir = mapDir
	}
	if f.scheme == nil {
		scheme, err := job.NewScheme("default", mapDir)
		if err != nil {
			return nil, err
		}
		f.scheme = scheme
	}

	f.readLinks(root, false, false)
	f.readProcessingInstructions(doc)

	if len(f.override) > 0 {
		c := dita.JoinTokens(f.override)
		f.log.Debug("using root chunk override", "chunk", c)
		root.CreateAttr(dita.AttrChunk, c)
	}
	rootTokens := dita.SplitTokens(dita.Value(root, dita.AttrChunk))
	f.defaultBy = dita.TokenByPrefix(rootTokens, "by-", TokenByDocument)

	if dita.HasToken(rootTokens, TokenToContent) {
		f.chunkMap(root)
	} else {
		for _, child := range root.ChildElements() {
			switch {
			case dita.MapReltable.Matches(child):
				f.updateReltable(child)
			case dita.MapTopicref.Matches(child):
				f.processTopicref(child, f.defaultBy)
			}
		}
	}

	changeTable, err := f.changes.snapshot()
	if err != nil {
		return nil, err
	}
	conflictTable, err := snapshotConflicts(f.conflicts)
	if err != nil {
		return nil, err
	}

	return &Result{
		Doc:           f.buildOutputDocument(root),
		Operations:    f.operations,
		ChangeTable:   changeTable,
		ConflictTable: conflictTable,
		ChunkTopics:   f.chunkTopics,
	}, nil
}

// readLinks is the reachability pre-pass: it collects every content URI
// that falls under an active, non-disabled chunk scope. Only set insertion
// happens here; the tree is not touched.
func (f *MapFilter) readLinks(elem *etree.Element, active, disabled bool) {
	tokens := dita.SplitTokens(dita.Value(elem, dita.AttrChunk))
	a := active || elem.SelectAttr(dita.AttrChunk) != nil
	d := disabled ||
		dita.HasToken(tokens, TokenToNavigation) ||
		(dita.MapgroupTopicgroup.Matches(elem) && !dita.MapgroupSubmap.Matches(elem)) ||
		dita.MapReltable.Matches(elem)

	if href := dita.Value(elem, dita.AttrHref); href != "" && a && !d {
		if target := dita.StripFragment(dita.ResolveString(f.currentFile, href)); target != nil {
			f.chunkTopics[target.String()] = struct{}{}
		}
		if copyTo := dita.Value(elem, dita.AttrCopyTo); copyTo != "" {
			if target := dita.StripFragment(dita.ResolveString(f.currentFile, copyTo)); target != nil {
				f.chunkTopics[target.String()] = struct{}{}
			}
		}
	}

	for _, child := range dita.ChildElements(elem, dita.MapTopicref) {
		f.readLinks(child, a, d)
	}
}

func (f *MapFilter) readProcessingInstructions(doc *etree.Document) {
	for _, tok := range doc.Child {
		pi, ok := tok.(*etree.ProcInst)
		if !ok {
			continue
		}
		switch pi.Target {
		case dita.PIWorkdir:
			f.piWorkdir = pi
		case dita.PIWorkdirURI:
			f.piWorkdirURI = pi
		case dita.PIPath2Proj:
			f.piPath2Proj = pi
		case dita.PIPath2ProjURI:
			f.piPath2ProjURI = pi
		case dita.PIPath2RootmapURI:
			f.piPath2RootURI = pi
		}
	}
}

// processTopicref is the per-node state transition. inheritedBy is the
// nearest ancestor's resolved by-mode, threaded through the recursion
// instead of kept as mutable traversal state.
func (f *MapFilter) processTopicref(topicref *etree.Element, inheritedBy string) {
	if strings.Contains(dita.Value(topicref, dita.AttrXtrf), dita.GeneratedByChunkMarker) {
		// Synthesized by a previous pass; never reprocessed.
		return
	}

	tokens := dita.SplitTokens(dita.Value(topicref, dita.AttrChunk))
	sel := selectToken(tokens)
	href := dita.ParseURI(dita.Value(topicref, dita.AttrHref))
	copyTo := dita.ParseURI(dita.Value(topicref, dita.AttrCopyTo))
	scope := dita.CascadeValue(topicref, dita.AttrScope)
	by := dita.TokenByPrefix(tokens, "by-", inheritedBy)

	switch {
	case scope == dita.ScopeExternal ||
		(href != nil && !f.resolver.Exists(dita.StripFragment(dita.Resolve(f.currentFile, href)))) ||
		(len(tokens) == 0 && href == nil):
		// Structural only: nothing to chunk here, but descendants may
		// still carry directives of their own.
		f.processChildren(topicref, by)

	case dita.HasToken(tokens, TokenToContent):
		f.processToContent(topicref, tokens, sel, href, copyTo)
		f.processChildren(topicref, by)

	case dita.HasToken(tokens, TokenToNavigation) && f.navigation:
		f.processChildren(topicref, by)
		f.processNavigation(topicref)

	case by == TokenByTopic:
		if href != nil {
			f.readByTopic(href, sel)
		} else {
			f.log.Warn("by-topic set on topicref without href", "id", dita.Value(topicref, dita.AttrID))
		}
		f.processChildren(topicref, by)

	default: // by-document
		var current *url.URL
		if copyTo != nil {
			current = dita.Resolve(f.currentFile, copyTo)
		} else if href != nil {
			current = dita.Resolve(f.currentFile, href)
		}
		if current != nil {
			// Re-inserting moves the entry to the end: the last
			// write in document order wins.
			f.changes.remove(current)
			role := dita.CascadeValue(topicref, dita.AttrProcessingRole)
			if role != dita.ProcessingRoleResource {
				f.changes.put(current, current)
			}
		}
		f.processChildren(topicref, by)
	}
}

func (f *MapFilter) processChildren(topicref *etree.Element, inheritedBy string) {
	for _, child := range dita.ChildElements(topicref, dita.MapTopicref) {
		f.processTopicref(child, inheritedBy)
	}
}

func (f *MapFilter) processToContent(topicref *etree.Element, tokens []string, sel string, href, copyTo *url.URL) {
	if dita.HasToken(tokens, TokenByTopic) {
		f.log.Warn("to-content and by-topic are mutually exclusive, ignoring by-topic",
			"id", dita.Value(topicref, dita.AttrID), "href", dita.Value(topicref, dita.AttrHref))
	}

	op := &Operation{Kind: ToContent, Select: sel}
	if href != nil {
		op.Src = dita.Resolve(f.currentFile, href)
	}

	var dst *url.URL
	switch {
	case copyTo != nil:
		dst = copyTo
	case href != nil:
		dst = href
	default:
		dst = f.generateStubTopic(topicref)
	}
	op.Dst = dita.Resolve(f.currentFile, dst)

	f.collectCombineChunk(dita.ChildElements(topicref, dita.MapTopicref), op)
	f.operations = append(f.operations, op)
}

// collectCombineChunk attaches descendant topicrefs to a merge operation.
// A descendant declaring its own to-content is never absorbed; it surfaces
// later as an independent top-level operation.
func (f *MapFilter) collectCombineChunk(topicrefs []*etree.Element, parent *Operation) {
	for _, elem := range topicrefs {
		tokens := dita.SplitTokens(dita.Value(elem, dita.AttrChunk))
		if dita.HasToken(tokens, TokenToContent) {
			continue
		}
		child := &Operation{Select: selectToken(tokens)}
		if href := dita.ParseURI(dita.Value(elem, dita.AttrHref)); href != nil {
			child.Src = dita.Resolve(f.currentFile, href)
		}
		parent.AddChild(child)
		f.collectCombineChunk(dita.ChildElements(elem, dita.MapTopicref), child)
	}
}

// processNavigation detaches the topicref into a new sibling map and leaves
// a navref placeholder in its place.
func (f *MapFilter) processNavigation(topicref *etree.Element) {
	// Climb to the document element; the etree document itself shows up
	// as a parent with an empty tag.
	docRoot := topicref
	for p := docRoot.Parent(); p != nil && p.Tag != ""; p = docRoot.Parent() {
		docRoot = p
	}
	newRoot := dita.ShallowCopy(docRoot)

	newMapFile := f.gen.Generate(mapChunkPrefix, extDitamap)
	navref := etree.NewElement("navref")
	navref.CreateAttr(dita.AttrMapref, newMapFile)
	navref.CreateAttr(dita.AttrClass, dita.MapNavref.String())

	parent := topicref.Parent()
	parent.InsertChildAt(topicref.Index(), navref)
	parent.RemoveChild(topicref)
	newRoot.AddChild(topicref)

	navmap := dita.StripFragment(dita.ResolveString(f.currentFile, newMapFile))
	f.changes.put(navmap, navmap)

	if err := dita.WriteDocument(f.fs, navmap.Path, f.assemble(newRoot)); err != nil {
		f.log.Error("failed to write navigation map", "map", navmap.String(), "error", err)
	}
}

// chunkMap handles a map root directed to-content: the root is temporarily
// reclassified as a topicref pointing at a freshly stubbed content file
// named after the map, run through the normal state machine, then restored.
func (f *MapFilter) chunkMap(root *etree.Element) {
	newFilename := dita.ReplaceExtension(dita.BaseName(f.currentFile), extDita)
	newFile := dita.ResolveString(f.currentFile, newFilename)
	if f.resolver.Exists(newFile) {
		oldFile := newFile
		newFilename = f.gen.Generate(chunkPrefix, extDita)
		newFile = dita.ResolveString(f.currentFile, newFilename)
		// Record the rename so stale references can be fixed up later.
		f.conflicts[newFile.String()] = oldFile.String()
	}
	f.changes.put(newFile, newFile)

	origClass := dita.Value(root, dita.AttrClass)
	root.CreateAttr(dita.AttrClass, origClass+dita.MapTopicref.Matcher())
	root.CreateAttr(dita.AttrHref, newFilename)

	f.createTopicStump(newFile)

	f.processTopicref(root, f.defaultBy)

	if origClass != "" {
		root.CreateAttr(dita.AttrClass, origClass)
	} else {
		root.RemoveAttr(dita.AttrClass)
	}
	root.RemoveAttr(dita.AttrHref)
}

// createTopicStump writes the minimal placeholder content file backing a
// chunked map root.
func (f *MapFilter) createTopicStump(newFile *url.URL) {
	dir := dita.Resolve(newFile, dita.ParseURI("."))
	doc := etree.NewDocument()
	doc.CreateProcInst(xmlDeclTarget, xmlDeclInst)
	doc.CreateProcInst(dita.PIWorkdir, dir.Path)
	doc.CreateProcInst(dita.PIWorkdirURI, dir.String())
	doc.CreateElement("dita")
	if err := dita.WriteDocument(f.fs, newFile.Path, doc); err != nil {
		f.log.Error("failed to write topic stump", "file", newFile.String(), "error", err)
	}
}

// updateReltable rewrites a reltable's href relative to the stub-map anchor
// when its target has been claimed in the change table.
func (f *MapFilter) updateReltable(elem *etree.Element) {
	if href := dita.Value(elem, dita.AttrHref); href != "" {
		target := dita.ResolveString(f.currentFile, href)
		if target != nil && f.changes.contains(target) {
			res := dita.RelativePath(dita.ResolveString(f.currentFile, StubMapName), dita.StripFragment(target))
			if frag := target.Fragment; frag != "" {
				res = dita.SetFragment(res, frag)
			}
			elem.CreateAttr(dita.AttrHref, res.String())
		}
	}
	for _, child := range elem.ChildElements() {
		f.updateReltable(child)
	}
}

// buildOutputDocument assembles the final map: preserved processing
// instructions, then a copy of the (mutated) root subtree.
func (f *MapFilter) buildOutputDocument(root *etree.Element) *etree.Document {
	return f.assemble(root)
}

func (f *MapFilter) assemble(root *etree.Element) *etree.Document {
	doc := etree.NewDocument()
	doc.CreateProcInst(xmlDeclTarget, xmlDeclInst)
	for _, pi := range []*etree.ProcInst{f.piWorkdir, f.piWorkdirURI, f.piPath2Proj, f.piPath2ProjURI, f.piPath2RootURI} {
		if pi != nil {
			doc.CreateProcInst(pi.Target, pi.Inst)
		}
	}
	doc.AddChild(root.Copy())
	return doc
}
