package testutils

import (
	"archive/zip"
	"bytes"
	"path/filepath"

	"github.com/mandelsoft/goutils/maputils"
	"github.com/mandelsoft/vfs/pkg/vfs"
)

// Archive creates a zip archive with the given entries
// in lexical order.
func Archive(fs vfs.FileSystem, path string, entries map[string]string) error {
	buf := bytes.NewBuffer(nil)
	w := zip.NewWriter(buf)
	for _, n := range maputils.OrderedKeys(entries) {
		f, err := w.Create(n)
		if err != nil {
			return err
		}
		if _, err := f.Write([]byte(entries[n])); err != nil {
			return err
		}
	}
	if err := w.Close(); err != nil {
		return err
	}
	return WriteFile(fs, path, buf.String())
}

// ArchiveContent returns the entries of a zip archive.
func ArchiveContent(fs vfs.FileSystem, path string) (map[string]string, error) {
	data, err := vfs.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	result := map[string]string{}
	for _, f := range r.File {
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		buf := bytes.NewBuffer(nil)
		_, err = buf.ReadFrom(rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
		result[f.Name] = buf.String()
	}
	return result, nil
}

func WriteFile(fs vfs.FileSystem, path string, content string) error {
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return vfs.WriteFile(fs, path, []byte(content), 0o644)
}
