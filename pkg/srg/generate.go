package srg

import (
	"strings"
)

func split(qualified string) (string, string) {
	i := strings.LastIndex(qualified, "/")
	if i < 0 {
		return "", qualified
	}
	return qualified[:i], qualified[i+1:]
}

func join(owner, name string) string {
	if owner == "" {
		return name
	}
	return owner + "/" + name
}

// Deobf derives the table mapping searge names to developer
// names from a packaged (obfuscated to searge) table.
// Class and package names are kept, so descriptors stay valid.
func Deobf(packaged *Mapping, methods, fields Names) *Mapping {
	m := New()
	for _, p := range packaged.Packages {
		m.Packages[p] = p
	}
	for _, c := range packaged.Classes {
		m.Classes[c] = c
	}
	for _, f := range packaged.Fields {
		owner, name := split(f)
		m.Fields[f] = join(owner, fields.Lookup(name))
	}
	for _, s := range packaged.Methods {
		owner, name := split(s.Name)
		m.Methods[s] = Method{join(owner, methods.Lookup(name)), s.Desc}
	}
	return m
}

// Reverse provides the inverse mapping. Entries mapped
// to the same target keep the lexically first source.
func Reverse(in *Mapping) *Mapping {
	m := New()
	reverse(in.Packages, m.Packages)
	reverse(in.Classes, m.Classes)
	reverse(in.Fields, m.Fields)
	for k, v := range in.Methods {
		if o, ok := m.Methods[v]; !ok || CompareMethod(k, o) < 0 {
			m.Methods[v] = k
		}
	}
	return m
}

func reverse(in, out map[string]string) {
	for k, v := range in {
		if o, ok := out[v]; !ok || k < o {
			out[v] = k
		}
	}
}
