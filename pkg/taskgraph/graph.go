package taskgraph

import (
	"fmt"
	"slices"
	"sync"

	"github.com/mandelsoft/goutils/maputils"
	"github.com/mandelsoft/logging"
	"k8s.io/apimachinery/pkg/util/sets"
	"ocm.software/open-component-model/bindings/go/dag"
)

var REALM = logging.DefineRealm("userdev/taskgraph", "task graph execution")

// Graph registers named tasks and their predecessors and
// executes sub graphs in dependency order. Outputs of tasks
// with an unchanged fingerprint are considered up-to-date.
type Graph struct {
	lock    sync.Mutex
	logging logging.Context
	workers int
	tasks   map[string]*Task
	done    map[string]string
}

func New(lctx logging.Context, workers int) *Graph {
	if lctx == nil {
		lctx = logging.DefaultContext()
	}
	if workers < 1 {
		workers = 1
	}
	return &Graph{
		logging: lctx.WithContext(REALM),
		workers: workers,
		tasks:   map[string]*Task{},
		done:    map[string]string{},
	}
}

func (g *Graph) CreateTask(name, kind string) (*Task, error) {
	g.lock.Lock()
	defer g.lock.Unlock()

	if _, ok := g.tasks[name]; ok {
		return nil, &DuplicateTaskError{name}
	}
	t := &Task{name: name, kind: kind}
	g.tasks[name] = t
	return t, nil
}

// Task returns a declared task or nil.
func (g *Graph) Task(name string) *Task {
	g.lock.Lock()
	defer g.lock.Unlock()
	return g.tasks[name]
}

// Tasks returns the names of all tasks in lexical order.
func (g *Graph) Tasks() []string {
	g.lock.Lock()
	defer g.lock.Unlock()
	return maputils.OrderedKeys(g.tasks)
}

// DAG builds the dependency graph. Edges point from a task
// to its predecessors.
func (g *Graph) DAG() (*dag.DirectedAcyclicGraph[string], error) {
	g.lock.Lock()
	defer g.lock.Unlock()
	return g.dag()
}

func (g *Graph) dag() (*dag.DirectedAcyclicGraph[string], error) {
	d := dag.NewDirectedAcyclicGraph[string]()
	names := maputils.OrderedKeys(g.tasks)
	for _, n := range names {
		if err := d.AddVertex(n, map[string]any{"kind": g.tasks[n].kind}); err != nil {
			return nil, err
		}
	}
	for _, n := range names {
		for _, dep := range g.tasks[n].deps {
			if _, ok := g.tasks[dep]; !ok {
				return nil, &UnknownTaskError{Task: dep, Dependent: n}
			}
			if err := d.AddEdge(n, dep); err != nil {
				return nil, fmt.Errorf("task %q: %w", n, err)
			}
		}
	}
	return d, nil
}

// Validate checks that all predecessors are declared and
// the graph is acyclic.
func (g *Graph) Validate() error {
	_, err := g.DAG()
	return err
}

// Predecessors returns the transitive predecessors of a task.
func (g *Graph) Predecessors(name string) (sets.Set[string], error) {
	g.lock.Lock()
	defer g.lock.Unlock()

	if _, ok := g.tasks[name]; !ok {
		return nil, &UnknownTaskError{Task: name}
	}
	closure, err := g.closure(name)
	if err != nil {
		return nil, err
	}
	return closure.Delete(name), nil
}

// Closure returns the given tasks together with all their
// transitive predecessors.
func (g *Graph) Closure(names ...string) (sets.Set[string], error) {
	g.lock.Lock()
	defer g.lock.Unlock()
	return g.closure(names...)
}

func (g *Graph) closure(names ...string) (sets.Set[string], error) {
	result := sets.New[string]()
	stack := slices.Clone(names)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if result.Has(n) {
			continue
		}
		t, ok := g.tasks[n]
		if !ok {
			return nil, &UnknownTaskError{Task: n}
		}
		result.Insert(n)
		for _, d := range t.deps {
			if _, ok := g.tasks[d]; !ok {
				return nil, &UnknownTaskError{Task: d, Dependent: n}
			}
			stack = append(stack, d)
		}
	}
	return result, nil
}

// Order returns the tasks required to realize the given tasks
// in a deterministic execution order.
func (g *Graph) Order(names ...string) ([]string, error) {
	g.lock.Lock()
	defer g.lock.Unlock()

	d, err := g.dag()
	if err != nil {
		return nil, err
	}
	closure, err := g.closure(names...)
	if err != nil {
		return nil, err
	}
	order, err := d.TopologicalSort()
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(order, func(n string) bool { return !closure.Has(n) }), nil
}

// Edges returns all dependency edges (task, predecessor)
// in lexical order.
func (g *Graph) Edges() ([][2]string, error) {
	d, err := g.DAG()
	if err != nil {
		return nil, err
	}
	return d.GetEdges(), nil
}
