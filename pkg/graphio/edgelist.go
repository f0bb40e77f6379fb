package graphio

import (
	"fmt"
	"strconv"
)

// Edge is one undirected edge read from an edge-list file, both endpoints
// as global vertex ids.
type Edge struct {
	U, V int64
}

// ReadEdgeList loads a CSV edge list (two integer columns, optional
// "u,v"-style header) via the package's generic CSV helpers. Each line
// contributes one undirected edge; callers add both half-edges for
// whichever endpoints they own.
func ReadEdgeList(path string) ([]Edge, error) {
	records, err := ReadCSVWithHeader(path, true, "u")
	if err != nil {
		return nil, fmt.Errorf("graphio: read edge list %s: %w", path, err)
	}

	edges := make([]Edge, 0, len(records))
	for i, record := range records {
		if err := ValidateRecordLength(record, 2, i+1); err != nil {
			return nil, fmt.Errorf("graphio: %w", err)
		}
		u, err := strconv.ParseInt(record[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("graphio: line %d: invalid u: %w", i+1, err)
		}
		v, err := strconv.ParseInt(record[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("graphio: line %d: invalid v: %w", i+1, err)
		}
		if u == v {
			return nil, fmt.Errorf("graphio: line %d: self-loop %d-%d not allowed", i+1, u, v)
		}
		edges = append(edges, Edge{U: u, V: v})
	}
	return edges, nil
}

// WriteEdgeList writes edges back out in the same "u,v" CSV shape
// ReadEdgeList expects, useful for dumping a synthetic generator's output.
func WriteEdgeList(path string, edges []Edge) error {
	rows := make([][]string, len(edges))
	for i, e := range edges {
		rows[i] = []string{strconv.FormatInt(e.U, 10), strconv.FormatInt(e.V, 10)}
	}
	return WriteCSV(path, []string{"u", "v"}, rows)
}

// MaxVertex returns the largest vertex id referenced by edges, or -1 if
// edges is empty.
func MaxVertex(edges []Edge) int64 {
	max := int64(-1)
	for _, e := range edges {
		if e.U > max {
			max = e.U
		}
		if e.V > max {
			max = e.V
		}
	}
	return max
}
