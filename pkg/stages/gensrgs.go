package stages

import (
	"bytes"
	"context"
	"fmt"

	"github.com/mandelsoft/vfs/pkg/vfs"

	"github.com/mandelsoft/userdev/pkg/delayed"
	"github.com/mandelsoft/userdev/pkg/srg"
)

// GenSrgs derives the deobfuscation and reobfuscation tables
// from the packaged table and the rename tables.
type GenSrgs struct {
	InSrg      delayed.File
	MethodsCsv delayed.File
	FieldsCsv  delayed.File
	DeobfSrg   delayed.File
	ReobfSrg   delayed.File
}

var _ Stage = (*GenSrgs)(nil)

func (s *GenSrgs) Kind() string {
	return "GenSrgs"
}

func (s *GenSrgs) Inputs() Params {
	return Params{
		"inSrg":      s.InSrg,
		"methodsCsv": s.MethodsCsv,
		"fieldsCsv":  s.FieldsCsv,
	}
}

func (s *GenSrgs) Outputs() Params {
	return Params{
		"deobfSrg": s.DeobfSrg,
		"reobfSrg": s.ReobfSrg,
	}
}

func (s *GenSrgs) Run(ctx context.Context, env *Env) error {
	c := env.Context()

	packaged, err := readMapping(env.FS, s.InSrg.Resolve(c))
	if err != nil {
		return err
	}
	methods, err := readNames(env.FS, s.MethodsCsv.Resolve(c))
	if err != nil {
		return err
	}
	fields, err := readNames(env.FS, s.FieldsCsv.Resolve(c))
	if err != nil {
		return err
	}

	deobf := srg.Deobf(packaged, methods, fields)
	if err := writeMapping(env.FS, s.DeobfSrg.Resolve(c), deobf); err != nil {
		return err
	}
	return writeMapping(env.FS, s.ReobfSrg.Resolve(c), srg.Reverse(deobf))
}

func readMapping(fs vfs.FileSystem, path string) (*srg.Mapping, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m, err := srg.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("mapping table %s: %w", path, err)
	}
	return m, nil
}

func readNames(fs vfs.FileSystem, path string) (srg.Names, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	n, err := srg.ReadNames(f)
	if err != nil {
		return nil, fmt.Errorf("rename table %s: %w", path, err)
	}
	return n, nil
}

func writeMapping(fs vfs.FileSystem, path string, m *srg.Mapping) error {
	buf := bytes.NewBuffer(nil)
	if err := m.Write(buf); err != nil {
		return err
	}
	log.Debug("writing mapping table {{path}}", "path", path)
	return writeFile(fs, path, buf.Bytes())
}
