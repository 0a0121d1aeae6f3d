package stages

import (
	"context"
	"fmt"

	"github.com/mandelsoft/goutils/sliceutils"

	"github.com/mandelsoft/userdev/pkg/delayed"
)

// Extract unpacks an archive. The source is typically
// known only after dependency resolution, so it may be
// bound after the stage has been declared.
type Extract struct {
	From    delayed.File
	Into    delayed.FileTree
	Exclude []string
}

var _ Stage = (*Extract)(nil)

func (s *Extract) Kind() string {
	return "Extract"
}

func (s *Extract) Inputs() Params {
	return Params{"from": s.From}
}

func (s *Extract) Outputs() Params {
	return Params{"into": s.Into}
}

func (s *Extract) Run(ctx context.Context, env *Env) error {
	c := env.Context()
	from, err := s.From.Must(c, "extract source")
	if err != nil {
		return err
	}
	excludes, err := CompileExcludes(s.Exclude)
	if err != nil {
		return err
	}
	into := s.Into.Resolve(c)
	// entries of a former distribution must not survive
	if err := env.FS.RemoveAll(into); err != nil {
		return err
	}
	n, err := extract(env.FS, from, into, excludes)
	if err != nil {
		return err
	}
	log.Info("extracted {{amount}} files from {{archive}} into {{dir}}", "amount", n, "archive", from, "dir", into)
	return nil
}

////////////////////////////////////////////////////////////////////////////////

// ExtractNatives unpacks the archives of a configuration
// holding native libraries.
type ExtractNatives struct {
	Slot    string
	Into    delayed.FileTree
	Exclude []string
}

var _ Stage = (*ExtractNatives)(nil)

func (s *ExtractNatives) Kind() string {
	return "ExtractNatives"
}

func (s *ExtractNatives) Inputs() Params {
	return Params{}
}

func (s *ExtractNatives) Outputs() Params {
	return Params{"into": s.Into}
}

// AddExcludes adds exclude patterns not yet present.
func (s *ExtractNatives) AddExcludes(patterns ...string) {
	s.Exclude = sliceutils.AppendUnique(s.Exclude, patterns...)
}

func (s *ExtractNatives) Run(ctx context.Context, env *Env) error {
	if env.Registry == nil {
		return fmt.Errorf("configuration registry: %w", ErrNoService)
	}
	files, err := env.Registry.ResolveSlot(ctx, s.Slot)
	if err != nil {
		return err
	}
	excludes, err := CompileExcludes(s.Exclude)
	if err != nil {
		return err
	}
	into := s.Into.Resolve(env.Context())
	for _, f := range files {
		n, err := extract(env.FS, f, into, excludes)
		if err != nil {
			return err
		}
		log.Debug("extracted {{amount}} native files from {{archive}}", "amount", n, "archive", f)
	}
	return nil
}
