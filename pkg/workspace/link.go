package workspace

import (
	"path/filepath"
	"strings"

	"github.com/mandelsoft/goutils/maputils"

	"github.com/mandelsoft/userdev/pkg/delayed"
)

type output struct {
	task string
	path string
	tree bool
}

func (o output) provides(path string) bool {
	if path == o.path {
		return true
	}
	return o.tree && strings.HasPrefix(path, o.path+string(filepath.Separator))
}

// checkProducers verifies that every stage consuming a file
// produced by another stage has this stage as transitive
// predecessor. Only paths are compared, the existence of the
// files is checked when a stage is executed.
func (s *Session) checkProducers() error {
	ctx := s.Context()

	var outputs []output
	for _, name := range maputils.OrderedKeys(s.stages) {
		params := s.stages[name].Outputs()
		for _, role := range maputils.OrderedKeys(params) {
			v := params[role]
			if !v.IsSet() || v.Kind() == delayed.KIND_STRING {
				continue
			}
			outputs = append(outputs, output{
				task: name,
				path: v.Resolve(ctx),
				tree: v.Kind() == delayed.KIND_FILETREE,
			})
		}
	}

	for _, name := range maputils.OrderedKeys(s.stages) {
		preds, err := s.graph.Predecessors(name)
		if err != nil {
			return err
		}
		params := s.stages[name].Inputs()
		for _, role := range maputils.OrderedKeys(params) {
			v := params[role]
			if !v.IsSet() || v.Kind() == delayed.KIND_STRING {
				continue
			}
			p := v.Resolve(ctx)
			for _, o := range outputs {
				if o.task == name || !o.provides(p) {
					continue
				}
				if !preds.Has(o.task) {
					return &UndeclaredProducerError{Task: name, Role: role, Path: p, Producer: o.task}
				}
			}
		}
	}
	return nil
}
