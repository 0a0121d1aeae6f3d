package delayed

import (
	"archive/zip"
	"fmt"
	"path"
	"path/filepath"
	"slices"

	"github.com/mandelsoft/vfs/pkg/vfs"
)

// FileTree describes a directory or the content of a
// zip archive. The existence of the tree is not checked
// before its content is requested with Files.
type FileTree struct {
	File
	zip bool
}

var _ Value = FileTree{}

func NewFileTree(template string, r Resolver) FileTree {
	return FileTree{File: NewFile(template, r)}
}

func NewZipTree(template string, r Resolver) FileTree {
	return FileTree{File: NewFile(template, r), zip: true}
}

func (t FileTree) Kind() Kind {
	if t.zip {
		return KIND_ZIPTREE
	}
	return KIND_FILETREE
}

// Files lists the regular files of the tree as slash separated
// paths relative to the tree root, in lexical order.
func (t FileTree) Files(fs vfs.FileSystem, ctx Context) ([]string, error) {
	p := t.Resolve(ctx)
	var (
		list []string
		err  error
	)
	if t.zip {
		list, err = zipEntries(fs, p)
	} else {
		list, err = dirEntries(fs, p, "")
	}
	if err != nil {
		return nil, fmt.Errorf("%s %q: %w", t.Kind(), p, err)
	}
	slices.Sort(list)
	return list, nil
}

func dirEntries(fs vfs.FileSystem, dir, prefix string) ([]string, error) {
	entries, err := vfs.ReadDir(fs, dir)
	if err != nil {
		return nil, err
	}
	var result []string
	for _, e := range entries {
		rel := path.Join(prefix, e.Name())
		if e.IsDir() {
			sub, err := dirEntries(fs, filepath.Join(dir, e.Name()), rel)
			if err != nil {
				return nil, err
			}
			result = append(result, sub...)
		} else {
			result = append(result, rel)
		}
	}
	return result, nil
}

func zipEntries(fs vfs.FileSystem, archive string) ([]string, error) {
	f, err := fs.Open(archive)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	r, err := zip.NewReader(f, fi.Size())
	if err != nil {
		return nil, err
	}
	var result []string
	for _, e := range r.File {
		if !e.FileInfo().IsDir() {
			result = append(result, e.Name)
		}
	}
	return result, nil
}
