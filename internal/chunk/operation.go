// Package chunk implements the chunk-planning pass over a parsed map
// document. The pass classifies every topicref against its resolved chunk
// directive, rewrites the map in place where the directives demand it, and
// emits an ordered list of Operations plus the bookkeeping tables the
// downstream compositor consumes.
package chunk

import "net/url"

// Kind identifies what an Operation asks the compositor to do. The zero
// value marks a passthrough collector child that only contributes its
// source to a parent merge.
type Kind string

const (
	// ToContent merges a topicref subtree into one content unit at Dst.
	ToContent Kind = "to-content"
	// ByTopic splits referenced content into one unit per nested topic.
	ByTopic Kind = "by-topic"
)

// Chunk directive tokens recognized on topicrefs. Anything else in @chunk
// is ignored.
const (
	TokenToContent      = "to-content"
	TokenToNavigation   = "to-navigation"
	TokenByTopic        = "by-topic"
	TokenByDocument     = "by-document"
	TokenSelectTopic    = "select-topic"
	TokenSelectDocument = "select-document"
	TokenSelectBranch   = "select-branch"
)

// Operation is one computed chunk instruction. Children mirror either the
// map subtree (ToContent merges) or the content's internal topic tree
// (ByTopic splits).
//
// Invariant: a ToContent operation's children never include a node that
// declares its own to-content; such nodes surface as independent top-level
// operations.
type Operation struct {
	Kind     Kind
	Select   string
	Src      *url.URL
	Dst      *url.URL
	Children []*Operation
}

// AddChild appends a child operation, preserving document order.
func (op *Operation) AddChild(child *Operation) {
	op.Children = append(op.Children, child)
}

// selectToken extracts the select-mode token from a directive token set,
// or "" when none is present.
func selectToken(tokens []string) string {
	for _, t := range tokens {
		switch t {
		case TokenSelectTopic, TokenSelectDocument, TokenSelectBranch:
			return t
		}
	}
	return ""
}
