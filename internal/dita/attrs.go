package dita

import "github.com/beevik/etree"

// Attribute names read or written by the planner.
const (
	AttrClass          = "class"
	AttrHref           = "href"
	AttrCopyTo         = "copy-to"
	AttrChunk          = "chunk"
	AttrScope          = "scope"
	AttrProcessingRole = "processing-role"
	AttrID             = "id"
	AttrNavtitle       = "navtitle"
	AttrXtrf           = "xtrf"
	AttrMapref         = "mapref"
	AttrFormat         = "format"
	AttrDomains        = "domains"
)

// Attribute values with defined semantics.
const (
	ScopeExternal          = "external"
	ProcessingRoleResource = "resource-only"
	FormatDita             = "dita"
	GeneratedByChunkMarker = "generated_by_chunk"
	DitaArchVersionAttr    = "ditaarch:DITAArchVersion"
	DitaArchVersion        = "1.3"
	DitaArchNamespaceAttr  = "xmlns:ditaarch"
	DitaArchNamespace      = "http://dita.oasis-open.org/architecture/2005/"
)

// Processing-instruction targets preserved from the input map.
const (
	PIWorkdir         = "workdir"
	PIWorkdirURI      = "workdir-uri"
	PIPath2Proj       = "path2project"
	PIPath2ProjURI    = "path2project-uri"
	PIPath2RootmapURI = "path2rootmap-uri"
)

// Value returns the element's attribute value, or the empty string when the
// attribute is absent.
func Value(e *etree.Element, name string) string {
	return e.SelectAttrValue(name, "")
}

// CascadeValue returns the nearest non-empty value of the attribute on the
// element or any of its ancestors. Scope and processing-role cascade down
// the map tree this way.
func CascadeValue(e *etree.Element, name string) string {
	for cur := e; cur != nil; cur = cur.Parent() {
		if v := cur.SelectAttrValue(name, ""); v != "" {
			return v
		}
	}
	return ""
}
