package delayed

import (
	"io"
	"maps"
	"strings"

	"github.com/valyala/fasttemplate"
)

const (
	TAG_START = "{"
	TAG_END   = "}"
)

// Resolver rewrites the placeholder tokens of a template.
// It must not modify the context and leaves unknown
// tokens untouched.
type Resolver interface {
	Resolve(template string, ctx Context) string
}

type ResolverFunc func(template string, ctx Context) string

func (f ResolverFunc) Resolve(template string, ctx Context) string {
	return f(template, ctx)
}

// TokenFunc provides the value of a token for a context.
type TokenFunc func(ctx Context) string

// Tokens is a token table usable as Resolver.
type Tokens map[string]TokenFunc

var _ Resolver = Tokens(nil)

func (t Tokens) Resolve(template string, ctx Context) string {
	if !strings.Contains(template, TAG_START) {
		return template
	}
	return fasttemplate.ExecuteFuncString(template, TAG_START, TAG_END, func(w io.Writer, tag string) (int, error) {
		if f, ok := t[tag]; ok {
			return io.WriteString(w, f(ctx))
		}
		if v, ok := ctx.Extra[tag]; ok {
			return io.WriteString(w, v)
		}
		// the tag may contain a further start tag, so only the
		// first one is kept and the rest is resolved again.
		return io.WriteString(w, TAG_START+t.Resolve(tag+TAG_END, ctx))
	})
}

// Merge combines token tables. Later tables override
// tokens of earlier ones.
func Merge(tables ...Tokens) Tokens {
	r := Tokens{}
	for _, t := range tables {
		maps.Copy(r, t)
	}
	return r
}

// Constant provides a token with a fixed value.
func Constant(v string) TokenFunc {
	return func(Context) string { return v }
}

// BaseTokens are available for all workspace flavors.
var BaseTokens = Tokens{
	"PROJECT_DIR": func(c Context) string { return c.ProjectDir },
	"BUILD_DIR":   func(c Context) string { return c.BuildDir },
	"CACHE_DIR":   func(c Context) string { return c.CacheDir },
	"MC_VERSION":  func(c Context) string { return c.McVersion },
}
