package stages

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/mandelsoft/vfs/pkg/vfs"
	"github.com/valyala/fasttemplate"
)

const TRANSFORMERS_ARG = "{transformers}"

// Command executes an external tool. Arguments may use the
// request fields as {name} placeholders. An argument consisting
// only of {transformers} is expanded to one argument per access
// transformer. The tool works on the OS filesystem, so the
// stage filesystem must be an OS based one.
type Command struct {
	Args []string
	Dir  string
}

var (
	_ Patcher  = (*Command)(nil)
	_ Remapper = (*Command)(nil)
)

func (c *Command) Patch(ctx context.Context, fs vfs.FileSystem, req PatchRequest) error {
	return c.run(ctx, map[string]string{
		"in":      req.In,
		"patches": req.Patches,
		"out":     req.Out,
	}, nil)
}

func (c *Command) Remap(ctx context.Context, fs vfs.FileSystem, req RemapRequest) error {
	return c.run(ctx, map[string]string{
		"in":          req.In,
		"out":         req.Out,
		"srg":         req.Srg,
		"exceptor":    req.Exceptor,
		"exceptorCfg": req.ExceptorCfg,
	}, req.Transformers)
}

// Expand provides the effective command line.
func (c *Command) Expand(values map[string]string, transformers []string) []string {
	var args []string
	for _, a := range c.Args {
		if a == TRANSFORMERS_ARG {
			args = append(args, transformers...)
			continue
		}
		args = append(args, fasttemplate.ExecuteFuncString(a, "{", "}", func(w io.Writer, tag string) (int, error) {
			if tag == "transformers" {
				return io.WriteString(w, strings.Join(transformers, ","))
			}
			if v, ok := values[tag]; ok {
				return io.WriteString(w, v)
			}
			return io.WriteString(w, "{"+tag+"}")
		}))
	}
	return args
}

func (c *Command) run(ctx context.Context, values map[string]string, transformers []string) error {
	args := c.Expand(values, transformers)
	if len(args) == 0 {
		return fmt.Errorf("command: %w", ErrNoService)
	}
	log.Debug("executing {{command}}", "command", args)
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Dir = c.Dir
	out := bytes.NewBuffer(nil)
	cmd.Stdout = out
	cmd.Stderr = out
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s failed: %w: %s", args[0], err, strings.TrimSpace(out.String()))
	}
	return nil
}
