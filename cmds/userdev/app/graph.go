package app

import (
	"github.com/spf13/cobra"
)

type Edge struct {
	Task      string `json:"task"`
	DependsOn string `json:"dependsOn"`
}

type Graph struct {
	cmd *cobra.Command

	mainopts *Options
	output   string
}

func NewGraph(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "show the stage dependencies",
		Args:  cobra.NoArgs,
	}
	c := &Graph{
		cmd:      cmd,
		mainopts: opts,
	}
	c.cmd.RunE = func(cmd *cobra.Command, args []string) error { return c.Run() }
	cmd.Flags().StringVarP(&c.output, "output", "o", "", "output format (yaml)")
	return cmd
}

func (c *Graph) Run() error {
	format, err := checkOutput(c.output)
	if err != nil {
		return err
	}
	s, err := c.mainopts.Configured(c.cmd.Context())
	if err != nil {
		return err
	}
	edges, err := s.Graph().Edges()
	if err != nil {
		return err
	}

	list := []Edge{}
	var rows [][]string
	for _, e := range edges {
		list = append(list, Edge{Task: e[0], DependsOn: e[1]})
		rows = append(rows, []string{e[0], e[1]})
	}
	if format == OUTPUT_YAML {
		return printYAML(c.cmd.OutOrStdout(), list)
	}
	printTable(c.cmd.OutOrStdout(), []string{"TASK", "DEPENDS ON"}, rows)
	return nil
}
