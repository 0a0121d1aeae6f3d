package taskgraph

import (
	"context"
	"errors"
	"sync"

	"github.com/mandelsoft/logging"
	"golang.org/x/sync/errgroup"
)

// Result describes the outcome of a run.
type Result struct {
	Executed []string
	UpToDate []string
}

// Waves groups the tasks required for the given targets by
// their depth in the graph. All predecessors of a task are
// located in earlier waves.
func (g *Graph) Waves(names ...string) ([][]string, error) {
	order, err := g.Order(names...)
	if err != nil {
		return nil, err
	}

	g.lock.Lock()
	defer g.lock.Unlock()

	level := map[string]int{}
	var waves [][]string
	for _, n := range order {
		l := 0
		for _, d := range g.tasks[n].deps {
			if level[d]+1 > l {
				l = level[d] + 1
			}
		}
		level[n] = l
		if l == len(waves) {
			waves = append(waves, nil)
		}
		waves[l] = append(waves[l], n)
	}
	return waves, nil
}

// Run executes the given tasks together with their predecessors.
// Tasks of a wave are executed concurrently. Execution stops
// after the first failing wave.
func (g *Graph) Run(ctx context.Context, names ...string) (*Result, error) {
	waves, err := g.Waves(names...)
	if err != nil {
		return nil, err
	}

	log := g.logging.Logger()
	result := &Result{}
	var mu sync.Mutex

	for i, wave := range waves {
		log.Debug("executing wave {{wave}}: {{tasks}}", "wave", i, "tasks", wave)
		eg, ectx := errgroup.WithContext(ctx)
		eg.SetLimit(g.workers)

		var errs []error
		for _, n := range wave {
			t := g.Task(n)
			eg.Go(func() error {
				executed, err := g.runTask(ectx, log.WithValues("task", n), t)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					errs = append(errs, &TaskError{Task: n, Err: err})
					return nil
				}
				if executed {
					result.Executed = append(result.Executed, n)
				} else {
					result.UpToDate = append(result.UpToDate, n)
				}
				return nil
			})
		}
		_ = eg.Wait()
		if len(errs) > 0 {
			return result, errors.Join(errs...)
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}
	}
	return result, nil
}

func (g *Graph) runTask(ctx context.Context, log logging.Logger, t *Task) (bool, error) {
	var fp string
	if t.fingerprint != nil {
		var err error
		fp, err = t.fingerprint()
		if err != nil {
			return false, err
		}
		if fp != "" {
			g.lock.Lock()
			last := g.done[t.name]
			g.lock.Unlock()
			if last == fp {
				log.Info("task {{task}} is up-to-date")
				return false, nil
			}
		}
	}

	log.Info("executing task {{task}}")
	if err := t.execute(ctx); err != nil {
		log.Error("task {{task}} failed", "error", err)
		g.lock.Lock()
		delete(g.done, t.name)
		g.lock.Unlock()
		return true, err
	}

	if t.fingerprint != nil {
		fp, err := t.fingerprint()
		if err != nil {
			return true, err
		}
		g.lock.Lock()
		if fp != "" {
			g.done[t.name] = fp
		}
		g.lock.Unlock()
	}
	return true, nil
}

// Invalidate forgets the recorded state of the given tasks,
// or of all tasks if no name is given.
func (g *Graph) Invalidate(names ...string) {
	g.lock.Lock()
	defer g.lock.Unlock()
	if len(names) == 0 {
		g.done = map[string]string{}
		return
	}
	for _, n := range names {
		delete(g.done, n)
	}
}
