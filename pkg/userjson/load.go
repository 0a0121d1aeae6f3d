package userjson

import (
	"errors"
	"fmt"

	"github.com/mandelsoft/logging"
	"github.com/mandelsoft/vfs/pkg/vfs"
	"sigs.k8s.io/yaml"
)

var REALM = logging.DefineRealm("userdev/userjson", "userdev manifest handling")

var log = logging.DynamicLogger(logging.DefaultContext(), REALM)

type Mode int

const (
	// BestEffort tolerates a missing manifest.
	BestEffort Mode = iota
	// Authoritative requires the manifest to exist.
	Authoritative
)

func (m Mode) String() string {
	switch m {
	case BestEffort:
		return "best-effort"
	case Authoritative:
		return "authoritative"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

type ManifestNotFoundError struct {
	Path string
}

func (e *ManifestNotFoundError) Error() string {
	return fmt.Sprintf("manifest %q not found", e.Path)
}

func (e *ManifestNotFoundError) Unwrap() error {
	return vfs.ErrNotExist
}

// Load reads a manifest. In BestEffort mode a missing file
// results in a nil manifest without error, in Authoritative mode
// a ManifestNotFoundError is returned.
func Load(fs vfs.FileSystem, path string, mode Mode) (*Manifest, error) {
	data, err := vfs.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, vfs.ErrNotExist) {
			if mode == BestEffort {
				log.Debug("manifest {{path}} not found", "path", path)
				return nil, nil
			}
			return nil, &ManifestNotFoundError{path}
		}
		return nil, fmt.Errorf("reading manifest %q: %w", path, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("manifest %q: %w", path, err)
	}
	return m, nil
}

func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	for i, l := range m.Libraries {
		if l.Name == "" {
			return nil, fmt.Errorf("libraries[%d]: name is required", i)
		}
		for j, r := range l.Rules {
			if r.Action != ALLOW && r.Action != DISALLOW {
				return nil, fmt.Errorf("libraries[%d] (%s).rules[%d]: invalid action %q", i, l.Name, j, r.Action)
			}
		}
	}
	return &m, nil
}
