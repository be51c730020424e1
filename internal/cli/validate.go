package cli

import (
	"fmt"
	"io"
)

// Validate parses and checks a network file and prints a summary.
func Validate(path string, w io.Writer) error {
	def, err := LoadNetwork(path, NoOverrides)
	if err != nil {
		return err
	}

	var total int64
	for _, e := range def.Edges {
		if e.From == 0 {
			total += e.Capacity
		}
	}
	fmt.Fprintf(w, "Network '%s' is valid: %d nodes, %d edges, source capacity %d (%s)\n",
		def.Name, def.Nodes, len(def.Edges), total, def.Config)
	return nil
}
