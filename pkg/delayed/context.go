package delayed

import (
	"maps"
)

// Context is the snapshot of the workspace state placeholder
// tokens are resolved against. It is passed by value, a change
// always creates a new snapshot.
type Context struct {
	ProjectDir string `json:"projectDir,omitempty"`
	BuildDir   string `json:"buildDir,omitempty"`
	CacheDir   string `json:"cacheDir,omitempty"`

	McVersion  string `json:"mcVersion,omitempty"`
	ApiVersion string `json:"apiVersion,omitempty"`
	ApiName    string `json:"apiName,omitempty"`

	// OS is the platform name used to select native libraries
	// (linux, osx or windows).
	OS string `json:"os,omitempty"`

	// Extra provides additional tokens. Explicit token tables
	// take precedence.
	Extra map[string]string `json:"extra,omitempty"`
}

// With returns a modified copy of the context.
func (c Context) With(mod func(c *Context)) Context {
	n := c
	n.Extra = maps.Clone(c.Extra)
	mod(&n)
	return n
}
