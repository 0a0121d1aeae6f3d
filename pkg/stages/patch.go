package stages

import (
	"context"

	"github.com/mandelsoft/userdev/pkg/delayed"
)

type ApplyBinPatches struct {
	InJar   delayed.File
	Patches delayed.File
	OutJar  delayed.File
}

var _ Stage = (*ApplyBinPatches)(nil)

func (s *ApplyBinPatches) Kind() string {
	return "ApplyBinPatches"
}

func (s *ApplyBinPatches) Inputs() Params {
	return Params{
		"inJar":   s.InJar,
		"patches": s.Patches,
	}
}

func (s *ApplyBinPatches) Outputs() Params {
	return Params{"outJar": s.OutJar}
}

func (s *ApplyBinPatches) Run(ctx context.Context, env *Env) error {
	patcher, err := env.Services.patcher()
	if err != nil {
		return err
	}
	c := env.Context()
	req := PatchRequest{
		In:      s.InJar.Resolve(c),
		Patches: s.Patches.Resolve(c),
		Out:     s.OutJar.Resolve(c),
	}
	log.Info("patching {{in}}", "in", req.In)
	return patcher.Patch(ctx, env.FS, req)
}

////////////////////////////////////////////////////////////////////////////////

// Marker is a stage without any work. It is used for task
// names other stages refer to, which are not required by
// a workspace flavor.
type Marker struct{}

var _ Stage = Marker{}

func (Marker) Kind() string {
	return "Marker"
}

func (Marker) Inputs() Params {
	return nil
}

func (Marker) Outputs() Params {
	return nil
}

func (Marker) Run(ctx context.Context, env *Env) error {
	return nil
}
