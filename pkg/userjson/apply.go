package userjson

import (
	"fmt"
)

// Registry is the part of a configuration registry
// required to apply a manifest.
type Registry interface {
	AddCoordinate(slot string, coordinate string) error
}

// Apply adds the applicable libraries to the given slots. Native
// libraries go to nativeSlot, all others to libSlot. The manifest
// order is kept, it determines the class path precedence.
func (m *Manifest) Apply(reg Registry, libSlot, nativeSlot string, os string) error {
	for _, e := range m.Entries(os) {
		slot := libSlot
		if e.Native {
			slot = nativeSlot
		}
		if err := reg.AddCoordinate(slot, e.Coordinate); err != nil {
			return fmt.Errorf("applying manifest: %w", err)
		}
	}
	return nil
}
