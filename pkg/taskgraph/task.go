package taskgraph

import (
	"context"
	"slices"

	"github.com/mandelsoft/goutils/sliceutils"
)

// Action is executed for a task.
type Action func(ctx context.Context, t *Task) error

// Fingerprint describes the current inputs and outputs of a task.
// An empty fingerprint disables the up-to-date check.
type Fingerprint func() (string, error)

// Task is a named node of the build graph.
type Task struct {
	name        string
	kind        string
	deps        []string
	action      Action
	last        []Action
	fingerprint Fingerprint
}

func (t *Task) Name() string {
	return t.name
}

func (t *Task) Kind() string {
	return t.kind
}

// DependsOn declares predecessors by name. The names
// are checked when the graph is validated.
func (t *Task) DependsOn(names ...string) *Task {
	t.deps = sliceutils.AppendUnique(t.deps, names...)
	return t
}

func (t *Task) Dependencies() []string {
	return slices.Clone(t.deps)
}

func (t *Task) SetAction(a Action) *Task {
	t.action = a
	return t
}

// DoLast adds an action executed after the main action.
func (t *Task) DoLast(a Action) *Task {
	t.last = append(t.last, a)
	return t
}

func (t *Task) SetFingerprint(f Fingerprint) *Task {
	t.fingerprint = f
	return t
}

func (t *Task) execute(ctx context.Context) error {
	if t.action != nil {
		if err := t.action(ctx, t); err != nil {
			return err
		}
	}
	for _, a := range t.last {
		if err := a(ctx, t); err != nil {
			return err
		}
	}
	return nil
}
