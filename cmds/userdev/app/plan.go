package app

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mandelsoft/userdev/pkg/workspace"
)

type PlanEntry struct {
	Wave         int      `json:"wave"`
	Task         string   `json:"task"`
	Kind         string   `json:"kind"`
	Dependencies []string `json:"dependencies,omitempty"`
}

type Plan struct {
	cmd *cobra.Command

	mainopts *Options
	output   string
}

func NewPlan(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan <target>",
		Short: "show the stages executed for a target",
		Args:  cobra.ExactArgs(1),
	}
	c := &Plan{
		cmd:      cmd,
		mainopts: opts,
	}
	c.cmd.RunE = func(cmd *cobra.Command, args []string) error { return c.Run(args) }
	cmd.Flags().StringVarP(&c.output, "output", "o", "", "output format (yaml)")
	return cmd
}

func (c *Plan) Run(args []string) error {
	format, err := checkOutput(c.output)
	if err != nil {
		return err
	}
	s, err := c.mainopts.Configured(c.cmd.Context())
	if err != nil {
		return err
	}
	list, err := PlanFor(s, args[0])
	if err != nil {
		return err
	}

	if format == OUTPUT_YAML {
		return printYAML(c.cmd.OutOrStdout(), list)
	}
	var rows [][]string
	for _, e := range list {
		rows = append(rows, []string{strconv.Itoa(e.Wave), e.Task, e.Kind, strings.Join(e.Dependencies, ",")})
	}
	printTable(c.cmd.OutOrStdout(), []string{"WAVE", "TASK", "KIND", "DEPENDS ON"}, rows)
	return nil
}

// PlanFor provides the stages required for a target in
// execution order.
func PlanFor(s *workspace.Session, target string) ([]PlanEntry, error) {
	order, err := s.Plan(target)
	if err != nil {
		return nil, err
	}
	waves, err := s.Graph().Waves(target)
	if err != nil {
		return nil, err
	}
	level := map[string]int{}
	for i, w := range waves {
		for _, n := range w {
			level[n] = i
		}
	}
	var list []PlanEntry
	for _, n := range order {
		t := s.Graph().Task(n)
		list = append(list, PlanEntry{
			Wave:         level[n],
			Task:         n,
			Kind:         t.Kind(),
			Dependencies: t.Dependencies(),
		})
	}
	return list, nil
}
