package curriculum

import (
	"io/fs"
	"os"
	"path"
	"slices"
	"strings"
)

// Source enumerates raw chapter documents.
type Source interface {
	// List returns document names in load order.
	List() ([]string, error)
	// Read returns the content of one document.
	Read(name string) ([]byte, error)
}

// FSSource serves *.md documents from a file system, in lexicographic path order.
// It works with os.DirFS as well as embedded content.
type FSSource struct {
	FS fs.FS
}

// NewDirSource returns a Source over the markdown files below dir.
func NewDirSource(dir string) FSSource {
	return FSSource{FS: os.DirFS(dir)}
}

func (s FSSource) List() ([]string, error) {
	var names []string
	err := fs.WalkDir(s.FS, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(path.Ext(p))
		if ext == ".md" || ext == ".markdown" {
			names = append(names, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.Sort(names)
	return names, nil
}

func (s FSSource) Read(name string) ([]byte, error) {
	return fs.ReadFile(s.FS, name)
}

// MemorySource is an in-memory Source keyed by document name.
type MemorySource map[string]string

func (m MemorySource) List() ([]string, error) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	slices.Sort(names)
	return names, nil
}

func (m MemorySource) Read(name string) ([]byte, error) {
	doc, ok := m[name]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return []byte(doc), nil
}
