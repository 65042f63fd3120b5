package extract

import (
	"fmt"
	"strconv"
	"strings"

	"tablesift/domain/table"
	"tablesift/internal/ident"
)

// NamePolicy decides what happens when two tables of one upload share a name
type NamePolicy string

const (
	// PolicyLastWins keeps one table per name: the last one seen, at the
	// position of the first.
	PolicyLastWins NamePolicy = "last-wins"
	// PolicySuffix keeps every table and renames repeats to name_2, name_3, ...
	PolicySuffix NamePolicy = "suffix"
)

// ParseNamePolicy accepts "last-wins" or "suffix" in any case
func ParseNamePolicy(s string) (NamePolicy, error) {
	switch p := NamePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyLastWins, PolicySuffix:
		return p, nil
	default:
		return "", fmt.Errorf("unknown name policy %q", s)
	}
}

// Resolve makes table names unique case-insensitively. Every name is
// lower-cased and cut to ident.MaxLength bytes first, the form a SQL backend
// stores it in, then collisions are settled by policy. The input is not
// modified.
func Resolve(tables []table.CleanTable, policy NamePolicy) []table.CleanTable {
	if policy == PolicySuffix {
		return resolveSuffix(tables)
	}
	return resolveLastWins(tables)
}

func canonical(name string) string {
	return ident.Truncate(strings.ToLower(name), ident.MaxLength)
}

func resolveLastWins(tables []table.CleanTable) []table.CleanTable {
	out := make([]table.CleanTable, 0, len(tables))
	pos := make(map[string]int, len(tables))

	for _, t := range tables {
		t.Name = canonical(t.Name)
		if i, ok := pos[t.Name]; ok {
			out[i] = t
			continue
		}
		pos[t.Name] = len(out)
		out = append(out, t)
	}
	return out
}

func resolveSuffix(tables []table.CleanTable) []table.CleanTable {
	out := make([]table.CleanTable, 0, len(tables))
	taken := make(map[string]struct{}, len(tables))

	// reserve every incoming name so a suffixed name never steals one
	for _, t := range tables {
		taken[canonical(t.Name)] = struct{}{}
	}
	used := make(map[string]struct{}, len(tables))

	for _, t := range tables {
		base := canonical(t.Name)
		name := base
		if _, dup := used[name]; dup {
			for k := 2; ; k++ {
				suffix := "_" + strconv.Itoa(k)
				name = ident.Truncate(base, ident.MaxLength-len(suffix)) + suffix
				_, a := taken[name]
				_, b := used[name]
				if !a && !b {
					break
				}
			}
		}
		used[name] = struct{}{}
		t.Name = name
		out = append(out, t)
	}
	return out
}
