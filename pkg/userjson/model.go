package userjson

import (
	"strings"

	"github.com/drone/envsubst"
)

type Action string

const (
	ALLOW    Action = "allow"
	DISALLOW Action = "disallow"
)

// Manifest is the dev json shipped with a userdev distribution.
// It describes the libraries required by the host application.
type Manifest struct {
	ID           string    `json:"id,omitempty"`
	InheritsFrom string    `json:"inheritsFrom,omitempty"`
	MainClass    string    `json:"mainClass,omitempty"`
	Libraries    []Library `json:"libraries"`
}

type Library struct {
	Name    string            `json:"name"`
	URL     string            `json:"url,omitempty"`
	Natives map[string]string `json:"natives,omitempty"`
	Rules   []Rule            `json:"rules,omitempty"`
	Extract *Extract          `json:"extract,omitempty"`
}

type Rule struct {
	Action Action  `json:"action"`
	OS     *OSRule `json:"os,omitempty"`
}

type OSRule struct {
	Name    string `json:"name,omitempty"`
	Version string `json:"version,omitempty"`
}

type Extract struct {
	Exclude []string `json:"exclude,omitempty"`
}

// Entry is a library reduced to what is required to
// feed a configuration.
type Entry struct {
	Coordinate string
	Native     bool
	Exclude    []string
}

func (l *Library) IsNative() bool {
	return l.Natives != nil
}

// Allowed evaluates the platform rules for an OS.
// Without rules a library is allowed everywhere, otherwise
// the last matching rule decides.
func (l *Library) Allowed(os string) bool {
	if len(l.Rules) == 0 {
		return true
	}
	allowed := false
	for _, r := range l.Rules {
		if r.OS == nil || r.OS.Name == os {
			allowed = r.Action == ALLOW
		}
	}
	return allowed
}

// Classifier returns the native classifier for an OS.
// Architecture variables (${arch}) are expanded to 64.
func (l *Library) Classifier(os string) (string, bool) {
	c, ok := l.Natives[os]
	if !ok {
		return "", false
	}
	if strings.Contains(c, "$") {
		r, err := envsubst.Eval(c, func(name string) string {
			if name == "arch" {
				return "64"
			}
			return ""
		})
		if err == nil {
			c = r
		}
	}
	return c, true
}

// Entries returns the libraries applicable for an OS in
// manifest order.
func (m *Manifest) Entries(os string) []Entry {
	var result []Entry
	for _, l := range m.Libraries {
		if !l.Allowed(os) {
			continue
		}
		e := Entry{
			Coordinate: l.Name,
			Native:     l.IsNative(),
		}
		if l.Extract != nil {
			e.Exclude = l.Extract.Exclude
		}
		if e.Native {
			c, ok := l.Classifier(os)
			if !ok {
				continue
			}
			e.Coordinate += ":" + c
		}
		result = append(result, e)
	}
	return result
}
