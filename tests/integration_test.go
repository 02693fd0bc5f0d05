package tests

import (
	"log/slog"
	"testing"

	"github.com/beevik/etree"
	billy "github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docfold/docfold/internal/config"
	"github.com/docfold/docfold/internal/planner"
)

// testFixture bundles the shared state for integration tests: a realistic
// map with its topic files on an in-memory filesystem, processed through
// the same planner entry point the CLI and the MCP server use.
type testFixture struct {
	fs  billy.Filesystem
	out *planner.Outcome
}

const testMap = `<?xml version="1.0" encoding="UTF-8"?>
<?workdir /docs?>
<map class="- map/map ">
	<topicref class="- map/topicref " chunk="to-content" href="guide.dita">
		<topicref class="- map/topicref " href="install.dita"/>
		<topicref class="- map/topicref " href="configure.dita">
			<topicref class="- map/topicref " href="advanced.dita"/>
		</topicref>
	</topicref>
	<topicref class="- map/topicref " chunk="by-topic" href="reference.dita"/>
	<topicref class="- map/topicref " href="glossary.dita" processing-role="resource-only"/>
	<reltable class="- map/reltable ">
		<relrow class="- map/relrow ">
			<relcell class="- map/relcell ">
				<topicref class="- map/topicref " href="./install.dita"/>
			</relcell>
		</relrow>
	</reltable>
</map>`

const testReference = `<topic id="reference" class="- topic/topic ">
	<title class="- topic/title ">Reference</title>
	<topic id="commands" class="- topic/topic "/>
	<topic id="options" class="- topic/topic "/>
</topic>`

func topicSource(id string) string {
	return `<topic id="` + id + `" class="- topic/topic "><title class="- topic/title ">` + id + `</title></topic>`
}

// setup builds the document set and runs a full planning pass over it.
func setup(t *testing.T, cfg *config.Config) *testFixture {
	t.Helper()

	fs := memfs.New()
	files := map[string]string{
		"/docs/root.ditamap":   testMap,
		"/docs/reference.dita": testReference,
	}
	for _, id := range []string{"guide", "install", "configure", "advanced", "glossary"} {
		files["/docs/"+id+".dita"] = topicSource(id)
	}
	for name, content := range files {
		require.NoError(t, util.WriteFile(fs, name, []byte(content), 0o644))
	}

	out, err := planner.Request{
		MapPath: "/docs/root.ditamap",
		Config:  cfg,
		Logger:  slog.New(slog.DiscardHandler),
		FS:      fs,
	}.Run()
	require.NoError(t, err)

	return &testFixture{fs: fs, out: out}
}

func TestEndToEnd_Plan(t *testing.T) {
	f := setup(t, nil)
	plan := f.out.Plan

	assert.Equal(t, "file:///docs/root.ditamap", plan.Map)
	require.Len(t, plan.Operations, 2)

	merge := plan.Operations[0]
	assert.Equal(t, "to-content", merge.Kind)
	assert.Equal(t, "file:///docs/guide.dita", merge.Dst)
	require.Len(t, merge.Children, 2)
	assert.Equal(t, "file:///docs/install.dita", merge.Children[0].Src)
	assert.Equal(t, "file:///docs/configure.dita", merge.Children[1].Src)
	require.Len(t, merge.Children[1].Children, 1)
	assert.Equal(t, "file:///docs/advanced.dita", merge.Children[1].Children[0].Src)

	split := plan.Operations[1]
	assert.Equal(t, "by-topic", split.Kind)
	assert.Equal(t, "file:///docs/reference.dita#reference", split.Src)
	require.Len(t, split.Children, 2)
	assert.Equal(t, "file:///docs/reference.dita#commands", split.Children[0].Src)
	assert.Equal(t, "file:///docs/reference.dita#options", split.Children[1].Src)
}

func TestEndToEnd_Tables(t *testing.T) {
	f := setup(t, nil)
	plan := f.out.Plan

	// Children absorbed into the merge still claim their original slots.
	assert.Equal(t, "file:///docs/install.dita", plan.ChangeTable["file:///docs/install.dita"])
	assert.Equal(t, "file:///docs/advanced.dita", plan.ChangeTable["file:///docs/advanced.dita"])
	// The resource-only glossary never claims an output slot.
	assert.NotContains(t, plan.ChangeTable, "file:///docs/glossary.dita")
	assert.Empty(t, plan.ConflictTable)

	// Chunk reachability covers the to-content subtree but not the
	// reltable cell.
	assert.Contains(t, plan.ChunkTopics, "file:///docs/guide.dita")
	assert.Contains(t, plan.ChunkTopics, "file:///docs/advanced.dita")
	assert.Contains(t, plan.ChunkTopics, "file:///docs/reference.dita")
}

func TestEndToEnd_RewrittenMap(t *testing.T) {
	f := setup(t, nil)

	doc := f.out.Result.Doc
	require.NotNil(t, doc.Root())
	assert.Equal(t, "map", doc.Root().Tag)

	// Preserved processing instruction.
	var targets []string
	for _, tok := range doc.Child {
		if pi, ok := tok.(*etree.ProcInst); ok {
			targets = append(targets, pi.Target)
		}
	}
	assert.Contains(t, targets, "workdir")

	// The reltable cell was renormalized against the stub-map anchor.
	cell := doc.Root().FindElement("reltable/relrow/relcell/topicref")
	require.NotNil(t, cell)
	assert.Equal(t, "install.dita", cell.SelectAttrValue("href", ""))
}

func TestEndToEnd_SharedRegistry(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	cfg.JobDB = dir + "/job.db"
	cfg.RootChunk = "to-content"

	f := setup(t, cfg)

	// The whole-map merge comes first; the guide's own to-content and the
	// reference split stay independent operations.
	require.Len(t, f.out.Plan.Operations, 3)
	assert.Equal(t, "file:///docs/root.dita", f.out.Plan.Operations[0].Dst)
	assert.Equal(t, "file:///docs/guide.dita", f.out.Plan.Operations[1].Dst)
	assert.Equal(t, "by-topic", f.out.Plan.Operations[2].Kind)

	// The stub backing the chunked map was written next to it.
	_, err := f.fs.Stat("/docs/root.dita")
	assert.NoError(t, err)
}
