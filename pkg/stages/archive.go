package stages

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gobwas/glob"
	"github.com/mandelsoft/vfs/pkg/vfs"
)

// ARCHIVE_TIME is used for all entries of generated archives.
var ARCHIVE_TIME = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

const MIME_ZIP = "application/zip"

type NoArchiveError struct {
	Path string
	Mime string
}

func (e *NoArchiveError) Error() string {
	return fmt.Sprintf("%s is no zip archive (%s)", e.Path, e.Mime)
}

func openArchive(fs vfs.FileSystem, path string) (*zip.Reader, error) {
	data, err := vfs.ReadFile(fs, path)
	if err != nil {
		return nil, err
	}
	mime := mimetype.Detect(data)
	if !isArchive(mime) {
		return nil, &NoArchiveError{path, mime.String()}
	}
	return zip.NewReader(bytes.NewReader(data), int64(len(data)))
}

// isArchive accepts zip and all formats derived from it,
// like jar.
func isArchive(m *mimetype.MIME) bool {
	for ; m != nil; m = m.Parent() {
		if m.Is(MIME_ZIP) {
			return true
		}
	}
	return false
}

func readEntry(f *zip.File) ([]byte, error) {
	r, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// Excludes matches archive entries. A pattern ending with
// a slash matches the complete sub tree.
type Excludes []glob.Glob

func CompileExcludes(patterns []string) (Excludes, error) {
	var result Excludes
	for _, p := range patterns {
		if strings.HasSuffix(p, "/") {
			p += "**"
		}
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}
		result = append(result, g)
	}
	return result, nil
}

func (e Excludes) Match(name string) bool {
	for _, g := range e {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// extract copies the regular entries of an archive into a
// directory and returns the number of extracted files.
func extract(fs vfs.FileSystem, archive, into string, excludes Excludes) (int, error) {
	r, err := openArchive(fs, archive)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, f := range r.File {
		if f.FileInfo().IsDir() || excludes.Match(f.Name) {
			continue
		}
		if !filepath.IsLocal(f.Name) {
			return count, fmt.Errorf("%s: invalid entry name %q", archive, f.Name)
		}
		data, err := readEntry(f)
		if err != nil {
			return count, fmt.Errorf("%s: %s: %w", archive, f.Name, err)
		}
		if err := writeFile(fs, filepath.Join(into, filepath.FromSlash(f.Name)), data); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

type entry struct {
	name string
	data []byte
}

// writeArchive creates a zip archive with the given entries
// in the given order. Entry timestamps are fixed, so the
// result only depends on the content.
func writeArchive(fs vfs.FileSystem, path string, entries []entry) error {
	buf := bytes.NewBuffer(nil)
	w := zip.NewWriter(buf)
	for _, e := range entries {
		h := &zip.FileHeader{
			Name:     e.name,
			Method:   zip.Deflate,
			Modified: ARCHIVE_TIME,
		}
		f, err := w.CreateHeader(h)
		if err != nil {
			return err
		}
		if _, err := f.Write(e.data); err != nil {
			return err
		}
	}
	if err := w.Close(); err != nil {
		return err
	}
	return writeFile(fs, path, buf.Bytes())
}

func writeFile(fs vfs.FileSystem, path string, data []byte) error {
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return vfs.WriteFile(fs, path, data, 0o644)
}
