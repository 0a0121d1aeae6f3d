package stages

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/mandelsoft/goutils/maputils"
	"github.com/mandelsoft/logging"
	"github.com/mandelsoft/vfs/pkg/vfs"

	"github.com/mandelsoft/userdev/pkg/configurations"
	"github.com/mandelsoft/userdev/pkg/delayed"
	"github.com/mandelsoft/userdev/pkg/taskgraph"
	"github.com/mandelsoft/userdev/pkg/utils"
)

var REALM = logging.DefineRealm("userdev/stages", "pipeline stages")

var log = logging.DynamicLogger(logging.DefaultContext(), REALM)

// Params maps parameter roles to deferred values.
type Params map[string]delayed.Value

// Stage is the description of a pipeline step. Inputs and
// outputs are deferred, they are resolved whenever the stage
// is executed or inspected.
type Stage interface {
	Kind() string
	Inputs() Params
	Outputs() Params
	Run(ctx context.Context, env *Env) error
}

// Env provides the execution environment for stages.
// Context is called for every resolution to get the
// current workspace snapshot.
type Env struct {
	FS       vfs.FileSystem
	Context  func() delayed.Context
	Registry *configurations.Registry
	Services Services
}

var ErrNoService = errors.New("service not configured")

type MissingInputError struct {
	Role string
	Path string
}

func (e *MissingInputError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("input %q not configured", e.Role)
	}
	return fmt.Sprintf("input %q (%s) not found", e.Role, e.Path)
}

// Register declares a task for a stage.
func Register(g *taskgraph.Graph, name string, s Stage, env *Env) (*taskgraph.Task, error) {
	t, err := g.CreateTask(name, s.Kind())
	if err != nil {
		return nil, err
	}
	t.SetAction(func(ctx context.Context, _ *taskgraph.Task) error {
		if err := CheckInputs(s, env); err != nil {
			return err
		}
		return s.Run(ctx, env)
	})
	t.SetFingerprint(func() (string, error) {
		return Fingerprint(s, env)
	})
	return t, nil
}

// CheckInputs verifies that all file inputs of a stage are
// configured and present.
func CheckInputs(s Stage, env *Env) error {
	ctx := env.Context()
	inputs := s.Inputs()
	for _, role := range maputils.OrderedKeys(inputs) {
		v := inputs[role]
		if v.Kind() == delayed.KIND_STRING {
			continue
		}
		if !v.IsSet() {
			return &MissingInputError{Role: role}
		}
		p := v.Resolve(ctx)
		if ok, err := vfs.Exists(env.FS, p); err != nil || !ok {
			return &MissingInputError{Role: role, Path: p}
		}
	}
	return nil
}

type state struct {
	Value  string   `json:"value,omitempty"`
	Digest string   `json:"digest,omitempty"`
	Files  []string `json:"files,omitempty"`
}

// Fingerprint describes the current state of the resolved
// inputs and outputs of a stage. Stages without outputs
// have no fingerprint.
func Fingerprint(s Stage, env *Env) (string, error) {
	outputs := s.Outputs()
	if len(outputs) == 0 {
		return "", nil
	}
	ctx := env.Context()

	in, err := states(env.FS, ctx, s.Inputs())
	if err != nil {
		return "", err
	}
	out, err := states(env.FS, ctx, outputs)
	if err != nil {
		return "", err
	}
	return utils.HashData(map[string]interface{}{
		"kind":    s.Kind(),
		"inputs":  in,
		"outputs": out,
	}), nil
}

func states(fs vfs.FileSystem, ctx delayed.Context, params Params) (map[string]state, error) {
	result := map[string]state{}
	for role, v := range params {
		if !v.IsSet() {
			continue
		}
		st := state{Value: v.Resolve(ctx)}
		switch v.Kind() {
		case delayed.KIND_FILE, delayed.KIND_ZIPTREE:
			d, err := utils.FileDigest(fs, st.Value)
			if err != nil && !errors.Is(err, vfs.ErrNotExist) {
				return nil, err
			}
			st.Digest = d
		case delayed.KIND_FILETREE:
			files, err := treeState(fs, ctx, v.(delayed.FileTree))
			if err != nil {
				return nil, err
			}
			st.Files = files
		}
		result[role] = st
	}
	return result, nil
}

func treeState(fs vfs.FileSystem, ctx delayed.Context, t delayed.FileTree) ([]string, error) {
	files, err := t.Files(fs, ctx)
	if err != nil {
		if errors.Is(err, vfs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	root := t.Resolve(ctx)
	for i, f := range files {
		d, err := utils.FileDigest(fs, filepath.Join(root, filepath.FromSlash(f)))
		if err != nil {
			return nil, err
		}
		files[i] = f + "@" + d
	}
	return files, nil
}
