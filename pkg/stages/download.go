package stages

import (
	"context"
	"fmt"
	"io"

	"github.com/mandelsoft/vfs/pkg/vfs"

	"github.com/mandelsoft/userdev/pkg/delayed"
)

// Download fetches a file. Existing files are kept.
type Download struct {
	URL    delayed.String
	OutJar delayed.File
}

var _ Stage = (*Download)(nil)

func (s *Download) Kind() string {
	return "Download"
}

func (s *Download) Inputs() Params {
	return Params{"url": s.URL}
}

func (s *Download) Outputs() Params {
	return Params{"outJar": s.OutJar}
}

func (s *Download) Run(ctx context.Context, env *Env) error {
	c := env.Context()
	out := s.OutJar.Resolve(c)
	if ok, _ := vfs.FileExists(env.FS, out); ok {
		log.Debug("{{file}} already present", "file", out)
		return nil
	}

	location := s.URL.Resolve(c)
	log.Info("downloading {{url}}", "url", location)
	r, err := env.Services.fetcher(env.FS).Fetch(ctx, location)
	if err != nil {
		return fmt.Errorf("download %s: %w", location, err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("download %s: %w", location, err)
	}
	return writeFile(env.FS, out, data)
}
