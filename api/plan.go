// Package api defines the serialized contract between the chunk planner
// and downstream consumers (the content compositor and link rewriter).
package api

// Operation is one computed chunk instruction. Kind is empty for
// passthrough collector children that only contribute a source to a parent
// merge.
type Operation struct {
	// Kind is "to-content", "by-topic", or empty for passthrough.
	Kind string `json:"kind,omitempty"`
	// Select is the selection-granularity modifier, when set.
	Select string `json:"select,omitempty"`
	// Src is the absolute source content URI, possibly fragment-qualified.
	Src string `json:"src,omitempty"`
	// Dst is the absolute final output URI (merges only).
	Dst string `json:"dst,omitempty"`
	// Children mirror the map subtree (merges) or the content's internal
	// topic tree (splits).
	Children []Operation `json:"children,omitempty"`
}

// Plan is the full outcome of planning one map document.
type Plan struct {
	// Map is the absolute URI of the processed map.
	Map string `json:"map"`
	// Operations is the ordered chunk-operation list, document order.
	Operations []Operation `json:"operations,omitempty"`
	// ChangeTable maps original absolute content URIs to final ones;
	// an identity entry marks a claimed-but-unchanged location.
	ChangeTable map[string]string `json:"change_table,omitempty"`
	// ConflictTable maps each newly chosen URI to the URI it displaced.
	ConflictTable map[string]string `json:"conflict_table,omitempty"`
	// ChunkTopics lists content URIs reachable under an active chunk
	// scope, sorted for deterministic output.
	ChunkTopics []string `json:"chunk_topics,omitempty"`
}
