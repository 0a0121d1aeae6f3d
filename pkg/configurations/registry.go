package configurations

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/mandelsoft/logging"
)

var REALM = logging.DefineRealm("userdev/configurations", "dependency configurations")

var log = logging.DynamicLogger(logging.DefaultContext(), REALM)

// Resolver materializes the coordinates of a configuration
// into files. Implementations report missing artifacts with an
// UnresolvableDependencyError.
type Resolver interface {
	Resolve(ctx context.Context, slot string, coordinates []string) ([]string, error)
}

type ResolverFunc func(ctx context.Context, slot string, coordinates []string) ([]string, error)

func (f ResolverFunc) Resolve(ctx context.Context, slot string, coordinates []string) ([]string, error) {
	return f(ctx, slot, coordinates)
}

type slot struct {
	name        string
	coordinates []string
}

// Registry manages named configuration slots holding
// dependency coordinates in insertion order.
type Registry struct {
	lock     sync.Mutex
	resolver Resolver
	slots    map[string]*slot
	order    []string
}

func NewRegistry(r Resolver) *Registry {
	return &Registry{
		resolver: r,
		slots:    map[string]*slot{},
	}
}

func (r *Registry) CreateSlot(name string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.slots[name]; ok {
		return &DuplicateSlotError{name}
	}
	r.slots[name] = &slot{name: name}
	r.order = append(r.order, name)
	return nil
}

func (r *Registry) Slots() []string {
	r.lock.Lock()
	defer r.lock.Unlock()
	return slices.Clone(r.order)
}

// AddCoordinate adds a coordinate to a slot. Adding an already
// contained coordinate keeps the slot unchanged.
func (r *Registry) AddCoordinate(name string, coordinate string) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	s, ok := r.slots[name]
	if !ok {
		return &UnknownSlotError{name}
	}
	if slices.Contains(s.coordinates, coordinate) {
		return nil
	}
	log.Debug("adding {{coordinate}} to {{slot}}", "coordinate", coordinate, "slot", name)
	s.coordinates = append(s.coordinates, coordinate)
	return nil
}

func (r *Registry) Coordinates(name string) ([]string, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	s, ok := r.slots[name]
	if !ok {
		return nil, &UnknownSlotError{name}
	}
	return slices.Clone(s.coordinates), nil
}

// ResolveSlot resolves the coordinates of a slot into files.
// Resolution errors are passed through, there is no retry.
func (r *Registry) ResolveSlot(ctx context.Context, name string) ([]string, error) {
	coords, err := r.Coordinates(name)
	if err != nil {
		return nil, err
	}
	if len(coords) == 0 {
		return nil, nil
	}
	if r.resolver == nil {
		return nil, &UnresolvableDependencyError{Slot: name, Coordinate: coords[0], Err: fmt.Errorf("no resolver configured")}
	}
	log.Info("resolving {{amount}} coordinates of {{slot}}", "amount", len(coords), "slot", name)
	files, err := r.resolver.Resolve(ctx, name, coords)
	if err != nil {
		return nil, err
	}
	return files, nil
}

// SingleFile resolves a slot, which must provide exactly one file.
func (r *Registry) SingleFile(ctx context.Context, name string) (string, error) {
	files, err := r.ResolveSlot(ctx, name)
	if err != nil {
		return "", err
	}
	if len(files) != 1 {
		return "", fmt.Errorf("configuration %q: expected a single file, but found %d", name, len(files))
	}
	return files[0], nil
}
