package srg

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/mandelsoft/goutils/maputils"
)

// Method identifies a method by its name and descriptor.
type Method struct {
	Name string
	Desc string
}

func CompareMethod(a, b Method) int {
	if c := strings.Compare(a.Name, b.Name); c != 0 {
		return c
	}
	return strings.Compare(a.Desc, b.Desc)
}

func (m Method) String() string {
	return m.Name + " " + m.Desc
}

// Mapping is a symbol mapping table in SRG format.
// Field and method names are fully qualified (owner/name).
type Mapping struct {
	Packages map[string]string
	Classes  map[string]string
	Fields   map[string]string
	Methods  map[Method]Method
}

func New() *Mapping {
	return &Mapping{
		Packages: map[string]string{},
		Classes:  map[string]string{},
		Fields:   map[string]string{},
		Methods:  map[Method]Method{},
	}
}

func Parse(r io.Reader) (*Mapping, error) {
	m := New()
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		kind, rest, ok := strings.Cut(text, ":")
		if !ok {
			return nil, fmt.Errorf("line %d: missing entry type", line)
		}
		fields := strings.Fields(rest)
		switch kind {
		case "PK":
			if len(fields) != 2 {
				return nil, fmt.Errorf("line %d: PK requires 2 fields, found %d", line, len(fields))
			}
			m.Packages[fields[0]] = fields[1]
		case "CL":
			if len(fields) != 2 {
				return nil, fmt.Errorf("line %d: CL requires 2 fields, found %d", line, len(fields))
			}
			m.Classes[fields[0]] = fields[1]
		case "FD":
			if len(fields) != 2 {
				return nil, fmt.Errorf("line %d: FD requires 2 fields, found %d", line, len(fields))
			}
			m.Fields[fields[0]] = fields[1]
		case "MD":
			if len(fields) != 4 {
				return nil, fmt.Errorf("line %d: MD requires 4 fields, found %d", line, len(fields))
			}
			m.Methods[Method{fields[0], fields[1]}] = Method{fields[2], fields[3]}
		default:
			return nil, fmt.Errorf("line %d: unknown entry type %q", line, kind)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

// Write serializes the mapping. Entries are sorted, so equal
// mappings always produce identical files.
func (m *Mapping) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, k := range maputils.OrderedKeys(m.Packages) {
		fmt.Fprintf(bw, "PK: %s %s\n", k, m.Packages[k])
	}
	for _, k := range maputils.OrderedKeys(m.Classes) {
		fmt.Fprintf(bw, "CL: %s %s\n", k, m.Classes[k])
	}
	for _, k := range maputils.OrderedKeys(m.Fields) {
		fmt.Fprintf(bw, "FD: %s %s\n", k, m.Fields[k])
	}
	for _, k := range maputils.Keys(m.Methods, CompareMethod) {
		fmt.Fprintf(bw, "MD: %s %s\n", k, m.Methods[k])
	}
	return bw.Flush()
}
