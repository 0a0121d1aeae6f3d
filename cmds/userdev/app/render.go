package app

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"sigs.k8s.io/yaml"
)

// Output formats.
const (
	OUTPUT_TABLE = ""
	OUTPUT_YAML  = "yaml"
)

func checkOutput(format string) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	switch format {
	case OUTPUT_TABLE, "table":
		return OUTPUT_TABLE, nil
	case OUTPUT_YAML:
		return format, nil
	}
	return "", fmt.Errorf("unknown output format %q", format)
}

// printTable writes rows below a header line without borders.
func printTable(w io.Writer, header []string, rows [][]string) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(row(header))
	for _, r := range rows {
		t.AppendRow(row(r))
	}
	style := table.StyleLight
	style.Options.DrawBorder = false
	t.SetStyle(style)
	t.Render()
}

func row(cols []string) table.Row {
	r := make(table.Row, len(cols))
	for i, c := range cols {
		r[i] = c
	}
	return r
}

func printYAML(w io.Writer, elems any) error {
	data, err := yaml.Marshal(elems)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s", string(data))
	return err
}
