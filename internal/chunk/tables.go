package chunk

import (
	"fmt"
	"net/url"

	"github.com/docfold/docfold/internal/dita"
)

// changeTable maps original absolute content URIs to their final absolute
// locations. Insertion order is preserved so downstream stages see entries
// in document order; removing and re-inserting a key moves it to the end,
// which is exactly the last-write-wins semantics of the left-to-right walk.
type changeTable struct {
	keys []string
	m    map[string]string
}

func newChangeTable() *changeTable {
	return &changeTable{m: make(map[string]string)}
}

func (t *changeTable) put(key, value *url.URL) {
	k := key.String()
	if _, seen := t.m[k]; !seen {
		t.keys = append(t.keys, k)
	}
	t.m[k] = value.String()
}

func (t *changeTable) remove(key *url.URL) {
	k := key.String()
	if _, seen := t.m[k]; !seen {
		return
	}
	delete(t.m, k)
	for i, existing := range t.keys {
		if existing == k {
			t.keys = append(t.keys[:i], t.keys[i+1:]...)
			break
		}
	}
}

func (t *changeTable) contains(key *url.URL) bool {
	_, ok := t.m[key.String()]
	return ok
}

// snapshot validates the absoluteness invariant and returns a copy.
func (t *changeTable) snapshot() (map[string]string, error) {
	out := make(map[string]string, len(t.m))
	for k, v := range t.m {
		if err := requireAbsolute(k, v); err != nil {
			return nil, fmt.Errorf("change table: %w", err)
		}
		out[k] = v
	}
	return out, nil
}

func requireAbsolute(pair ...string) error {
	for _, s := range pair {
		if !dita.IsAbs(dita.ParseURI(s)) {
			return fmt.Errorf("entry %q is not an absolute URI", s)
		}
	}
	return nil
}

func snapshotConflicts(conflicts map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(conflicts))
	for k, v := range conflicts {
		if err := requireAbsolute(k, v); err != nil {
			return nil, fmt.Errorf("conflict table: %w", err)
		}
		out[k] = v
	}
	return out, nil
}
