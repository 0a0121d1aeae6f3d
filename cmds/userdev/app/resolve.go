package app

import (
	"fmt"

	"github.com/spf13/cobra"
)

type Resolve struct {
	cmd *cobra.Command

	mainopts  *Options
	configure bool
}

func NewResolve(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve {<template>}",
		Short: "resolve placeholder templates",
		Long: `
Resolves templates like {CACHE_DIR}/{API_NAME} against the workspace
settings. With --configure the configuration pass is executed first,
so that values taken from the api manifest are available.
`,
		Args: cobra.MinimumNArgs(1),
	}
	c := &Resolve{
		cmd:      cmd,
		mainopts: opts,
	}
	c.cmd.RunE = func(cmd *cobra.Command, args []string) error { return c.Run(args) }
	cmd.Flags().BoolVarP(&c.configure, "configure", "C", false, "configure workspace before resolution")
	return cmd
}

func (c *Resolve) Run(args []string) error {
	s, err := c.mainopts.Session()
	if err != nil {
		return err
	}
	if c.configure {
		if err := s.Configure(c.cmd.Context()); err != nil {
			return err
		}
	}
	ctx := s.Context()
	for _, a := range args {
		fmt.Fprintf(c.cmd.OutOrStdout(), "%s\n", s.DelayedString(a).Resolve(ctx))
	}
	return nil
}
