package stages

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/mandelsoft/goutils/maputils"
	"github.com/mandelsoft/vfs/pkg/vfs"

	"github.com/mandelsoft/userdev/pkg/delayed"
)

type MergeJars struct {
	Client   delayed.File
	Server   delayed.File
	MergeCfg delayed.File
	OutJar   delayed.File
}

var _ Stage = (*MergeJars)(nil)

func (s *MergeJars) Kind() string {
	return "MergeJars"
}

func (s *MergeJars) Inputs() Params {
	return Params{
		"client":   s.Client,
		"server":   s.Server,
		"mergeCfg": s.MergeCfg,
	}
}

func (s *MergeJars) Outputs() Params {
	return Params{"outJar": s.OutJar}
}

func (s *MergeJars) Run(ctx context.Context, env *Env) error {
	c := env.Context()
	req := MergeRequest{
		Client: s.Client.Resolve(c),
		Server: s.Server.Resolve(c),
		Config: s.MergeCfg.Resolve(c),
		Out:    s.OutJar.Resolve(c),
	}
	log.Info("merging {{client}} and {{server}}", "client", req.Client, "server", req.Server)
	return env.Services.merger().Merge(ctx, env.FS, req)
}

////////////////////////////////////////////////////////////////////////////////

// MergeConfig controls the archive merge.
// Entries matching a Drop prefix are omitted, for entries
// matching a Server prefix the server copy is used. Otherwise
// the client copy wins for entries present in both archives.
type MergeConfig struct {
	Drop   []string
	Server []string
}

func ParseMergeConfig(r io.Reader) (*MergeConfig, error) {
	cfg := &MergeConfig{}
	scanner := bufio.NewScanner(r)
	n := 0
	for scanner.Scan() {
		n++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		switch line[0] {
		case '!':
			cfg.Drop = append(cfg.Drop, strings.TrimSpace(line[1:]))
		case '^':
			cfg.Server = append(cfg.Server, strings.TrimSpace(line[1:]))
		default:
			return nil, fmt.Errorf("line %d: invalid merge rule %q", n, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func hasPrefix(name string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}

// ArchiveMerger merges zip archives. Entries of the result
// are ordered by name.
type ArchiveMerger struct{}

var _ Merger = ArchiveMerger{}

func (ArchiveMerger) Merge(ctx context.Context, fs vfs.FileSystem, req MergeRequest) error {
	var cfg MergeConfig
	if req.Config != "" {
		f, err := fs.Open(req.Config)
		if err != nil {
			return err
		}
		c, err := ParseMergeConfig(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("merge config %s: %w", req.Config, err)
		}
		cfg = *c
	}

	client, err := archiveContent(fs, req.Client)
	if err != nil {
		return err
	}
	server, err := archiveContent(fs, req.Server)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	merged := map[string][]byte{}
	for name, data := range server {
		merged[name] = data
	}
	for name, data := range client {
		if _, ok := server[name]; ok && hasPrefix(name, cfg.Server) {
			continue
		}
		merged[name] = data
	}

	var entries []entry
	for _, name := range maputils.OrderedKeys(merged) {
		if hasPrefix(name, cfg.Drop) {
			continue
		}
		entries = append(entries, entry{name, merged[name]})
	}
	log.Debug("writing {{amount}} entries to {{archive}}", "amount", len(entries), "archive", req.Out)
	return writeArchive(fs, req.Out, entries)
}

func archiveContent(fs vfs.FileSystem, path string) (map[string][]byte, error) {
	r, err := openArchive(fs, path)
	if err != nil {
		return nil, err
	}
	result := map[string][]byte{}
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		data, err := readEntry(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", path, f.Name, err)
		}
		result[f.Name] = data
	}
	return result, nil
}
