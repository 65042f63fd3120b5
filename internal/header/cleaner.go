// Package header turns a header row into unique column identifiers.
package header

import (
	"strconv"

	"tablesift/domain/grid"
	"tablesift/internal/ident"
)

// Unnamed is the identifier given to empty header cells
const Unnamed = "Unnamed_Column"

// Clean returns one identifier per header cell, in order. Duplicates get the
// smallest unused "_<k>" suffix, k starting at 1, so the output never repeats.
func Clean(cells []grid.Cell) []string {
	out := make([]string, len(cells))
	seen := make(map[string]struct{}, len(cells))

	for i, c := range cells {
		base := identifier(c)
		name := base
		for k := 1; contains(seen, name); k++ {
			name = base + "_" + strconv.Itoa(k)
		}
		seen[name] = struct{}{}
		out[i] = name
	}

	return out
}

func identifier(c grid.Cell) string {
	if c.IsEmpty() {
		return Unnamed
	}
	return ident.Clean(c.String())
}

func contains(set map[string]struct{}, s string) bool {
	_, ok := set[s]
	return ok
}
