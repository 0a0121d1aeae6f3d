package srg

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Names maps searge names to developer names.
type Names map[string]string

// ReadNames reads a rename table in CSV form. The first record
// is the header, it must provide the columns searge and name.
func ReadNames(r io.Reader) (Names, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return Names{}, nil
		}
		return nil, err
	}
	searge, name := -1, -1
	for i, h := range header {
		switch strings.TrimSpace(h) {
		case "searge":
			searge = i
		case "name":
			name = i
		}
	}
	if searge < 0 || name < 0 {
		return nil, fmt.Errorf("rename table requires searge and name columns")
	}

	names := Names{}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(rec) <= searge || len(rec) <= name {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("line %d: incomplete record", line)
		}
		names[rec[searge]] = rec[name]
	}
	return names, nil
}

func (n Names) Lookup(s string) string {
	if r, ok := n[s]; ok && r != "" {
		return r
	}
	return s
}
