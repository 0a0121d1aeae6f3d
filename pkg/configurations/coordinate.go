package configurations

import (
	"fmt"
	"path"
	"strings"
)

const DEFAULT_EXTENSION = "jar"

// Coordinate is a parsed dependency notation
// group:name:version[:classifier][@extension].
type Coordinate struct {
	Group      string
	Name       string
	Version    string
	Classifier string
	Extension  string
}

func ParseCoordinate(s string) (*Coordinate, error) {
	c := &Coordinate{Extension: DEFAULT_EXTENSION}

	notation := s
	if i := strings.LastIndex(notation, "@"); i >= 0 {
		c.Extension = notation[i+1:]
		notation = notation[:i]
		if c.Extension == "" {
			return nil, fmt.Errorf("invalid coordinate %q: empty extension", s)
		}
	}
	parts := strings.Split(notation, ":")
	if len(parts) < 3 || len(parts) > 4 {
		return nil, fmt.Errorf("invalid coordinate %q: expected group:name:version[:classifier]", s)
	}
	for i, p := range parts {
		if p == "" {
			return nil, fmt.Errorf("invalid coordinate %q: empty segment %d", s, i+1)
		}
	}
	c.Group, c.Name, c.Version = parts[0], parts[1], parts[2]
	if len(parts) == 4 {
		c.Classifier = parts[3]
	}
	return c, nil
}

func (c *Coordinate) String() string {
	s := fmt.Sprintf("%s:%s:%s", c.Group, c.Name, c.Version)
	if c.Classifier != "" {
		s += ":" + c.Classifier
	}
	if c.Extension != DEFAULT_EXTENSION {
		s += "@" + c.Extension
	}
	return s
}

// FileName returns the artifact file name in repository layout.
func (c *Coordinate) FileName() string {
	n := c.Name + "-" + c.Version
	if c.Classifier != "" {
		n += "-" + c.Classifier
	}
	return n + "." + c.Extension
}

// Path returns the slash separated repository path of the artifact.
func (c *Coordinate) Path() string {
	return path.Join(strings.ReplaceAll(c.Group, ".", "/"), c.Name, c.Version, c.FileName())
}
