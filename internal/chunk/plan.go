package chunk

import (
	"net/url"
	"sort"

	"github.com/docfold/docfold/api"
)

// Plan projects the run outcome onto the serialized api contract.
func (r *Result) Plan(mapURI *url.URL) api.Plan {
	topics := make([]string, 0, len(r.ChunkTopics))
	for uri := range r.ChunkTopics {
		topics = append(topics, uri)
	}
	sort.Strings(topics)

	ops := make([]api.Operation, 0, len(r.Operations))
	for _, op := range r.Operations {
		ops = append(ops, toAPIOperation(op))
	}

	return api.Plan{
		Map:           mapURI.String(),
		Operations:    ops,
		ChangeTable:   r.ChangeTable,
		ConflictTable: r.ConflictTable,
		ChunkTopics:   topics,
	}
}

func toAPIOperation(op *Operation) api.Operation {
	out := api.Operation{
		Kind:   string(op.Kind),
		Select: op.Select,
	}
	if op.Src != nil {
		out.Src = op.Src.String()
	}
	if op.Dst != nil {
		out.Dst = op.Dst.String()
	}
	for _, child := range op.Children {
		out.Children = append(out.Children, toAPIOperation(child))
	}
	return out
}
