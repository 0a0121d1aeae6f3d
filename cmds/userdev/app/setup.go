package app

import (
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mandelsoft/userdev/pkg/ctxutil"
	"github.com/mandelsoft/userdev/pkg/workspace"
)

// targets maps short names to lifecycle tasks.
var targets = map[string]string{
	"ci":     workspace.SETUP_CI,
	"dev":    workspace.SETUP_DEV,
	"decomp": workspace.SETUP_DECOMP,
}

func target(name string) string {
	if t, ok := targets[name]; ok {
		return t
	}
	return name
}

type Setup struct {
	cmd *cobra.Command

	mainopts *Options
	timeout  time.Duration
}

func NewSetup(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setup {<target>}",
		Short: "execute the stages of workspace targets",
		Long: `
Executes the given targets together with all required stages. Targets
are task names or one of the short names ci, dev and decomp. Without
argument the dev workspace is set up.
`,
	}
	c := &Setup{
		cmd:      cmd,
		mainopts: opts,
	}
	c.cmd.RunE = func(cmd *cobra.Command, args []string) error { return c.Run(args) }
	cmd.Flags().DurationVarP(&c.timeout, "timeout", "t", 0, "timeout for the stage execution")
	return cmd
}

func (c *Setup) Run(args []string) error {
	if len(args) == 0 {
		args = []string{"dev"}
	}
	var names []string
	for _, a := range args {
		names = append(names, target(a))
	}

	ctx := ctxutil.TimeoutContext(c.cmd.Context(), c.timeout)
	defer ctxutil.Cancel(ctx)

	s, err := c.mainopts.Configured(ctx)
	if err != nil {
		return err
	}
	res, err := s.Run(ctx, names...)
	if res != nil {
		var rows [][]string
		for _, n := range res.Executed {
			rows = append(rows, []string{n, "executed"})
		}
		for _, n := range res.UpToDate {
			rows = append(rows, []string{n, "up-to-date"})
		}
		slices.SortFunc(rows, func(a, b []string) int { return strings.Compare(a[0], b[0]) })
		printTable(c.cmd.OutOrStdout(), []string{"TASK", "STATUS"}, rows)
	}
	return err
}
