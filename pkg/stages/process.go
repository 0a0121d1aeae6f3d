package stages

import (
	"context"
	"fmt"

	"github.com/mandelsoft/userdev/pkg/delayed"
)

// ProcessJar remaps the merged archive to searge names and
// applies the access transformers.
type ProcessJar struct {
	InJar        delayed.File
	ExceptorJar  delayed.File
	Srg          delayed.File
	ExceptorCfg  delayed.File
	OutCleanJar  delayed.File
	Transformers []delayed.File
}

var _ Stage = (*ProcessJar)(nil)

func (s *ProcessJar) Kind() string {
	return "ProcessJar"
}

func (s *ProcessJar) AddTransformers(files ...delayed.File) {
	s.Transformers = append(s.Transformers, files...)
}

func (s *ProcessJar) Inputs() Params {
	p := Params{
		"inJar":       s.InJar,
		"exceptorJar": s.ExceptorJar,
		"srg":         s.Srg,
		"exceptorCfg": s.ExceptorCfg,
	}
	for i, t := range s.Transformers {
		p[fmt.Sprintf("transformer%d", i)] = t
	}
	return p
}

func (s *ProcessJar) Outputs() Params {
	return Params{"outCleanJar": s.OutCleanJar}
}

func (s *ProcessJar) Run(ctx context.Context, env *Env) error {
	remapper, err := env.Services.remapper()
	if err != nil {
		return err
	}
	c := env.Context()
	req := RemapRequest{
		In:          s.InJar.Resolve(c),
		Out:         s.OutCleanJar.Resolve(c),
		Srg:         s.Srg.Resolve(c),
		Exceptor:    s.ExceptorJar.Resolve(c),
		ExceptorCfg: s.ExceptorCfg.Resolve(c),
	}
	for _, t := range s.Transformers {
		req.Transformers = append(req.Transformers, t.Resolve(c))
	}
	log.Info("remapping {{in}} with {{amount}} access transformers", "in", req.In, "amount", len(req.Transformers))
	return remapper.Remap(ctx, env.FS, req)
}
