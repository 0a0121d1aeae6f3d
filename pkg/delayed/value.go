package delayed

import (
	"fmt"
	"path/filepath"
)

type Kind string

const (
	KIND_STRING   Kind = "String"
	KIND_FILE     Kind = "File"
	KIND_FILETREE Kind = "FileTree"
	KIND_ZIPTREE  Kind = "ZipTree"
)

// Value is a template based value, which is resolved
// whenever it is read. Results are never cached, so
// the same value may yield different results if the
// context changes between two reads.
type Value interface {
	Kind() Kind
	Template() string
	Resolve(ctx Context) string
	IsSet() bool
}

type base struct {
	template string
	resolver Resolver
}

func (b base) Template() string {
	return b.template
}

func (b base) IsSet() bool {
	return b.template != ""
}

func (b base) resolve(ctx Context) string {
	if b.resolver == nil {
		return b.template
	}
	return b.resolver.Resolve(b.template, ctx)
}

func (b base) String() string {
	return b.template
}

////////////////////////////////////////////////////////////////////////////////

type String struct {
	base
}

var _ Value = String{}

func NewString(template string, r Resolver) String {
	return String{base{template, r}}
}

func (s String) Kind() Kind {
	return KIND_STRING
}

func (s String) Resolve(ctx Context) string {
	return s.resolve(ctx)
}

////////////////////////////////////////////////////////////////////////////////

// File is a path template. Relative results are interpreted
// relative to the project directory of the context.
type File struct {
	base
}

var _ Value = File{}

func NewFile(template string, r Resolver) File {
	return File{base{template, r}}
}

func (f File) Kind() Kind {
	return KIND_FILE
}

func (f File) Resolve(ctx Context) string {
	p := f.resolve(ctx)
	if filepath.IsAbs(p) || ctx.ProjectDir == "" {
		return filepath.Clean(p)
	}
	return filepath.Join(ctx.ProjectDir, p)
}

// Must resolves a set file or reports an error for an unset one.
func (f File) Must(ctx Context, role string) (string, error) {
	if !f.IsSet() {
		return "", fmt.Errorf("%s not configured", role)
	}
	return f.Resolve(ctx), nil
}
