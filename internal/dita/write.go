package dita

import (
	"fmt"
	"path"

	"github.com/beevik/etree"
	billy "github.com/go-git/go-billy/v5"
)

// WriteDocument serializes doc to name on fs. The write is atomic: content
// goes to a temp file in the same directory first, then a rename swaps it
// into place.
func WriteDocument(fs billy.Filesystem, name string, doc *etree.Document) error {
	data, err := doc.WriteToBytes()
	if err != nil {
		return fmt.Errorf("serialize %s: %w", name, err)
	}

	dir := path.Dir(name)
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}

	tmp, err := fs.TempFile(dir, ".docfold-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = fs.Remove(tmpName) // best-effort cleanup
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = fs.Remove(tmpName) // best-effort cleanup
		return fmt.Errorf("close temp: %w", err)
	}

	if err := fs.Rename(tmpName, name); err != nil {
		_ = fs.Remove(tmpName) // best-effort cleanup
		return fmt.Errorf("rename temp to %s: %w", name, err)
	}
	return nil
}
