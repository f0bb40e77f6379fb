package graphio

import "math/rand"

// GenerateErdosRenyi builds a random undirected graph on nv vertices where
// each of the nv*(nv-1)/2 possible edges is included independently with
// probability prob. Intended for exercising the counting engine against a
// known expected-triangle count (nv choose 3 times prob^3, in expectation)
// without needing a real edge-list file on disk.
func GenerateErdosRenyi(nv int64, prob float64, rng *rand.Rand) []Edge {
	edges := make([]Edge, 0)
	for u := int64(0); u < nv; u++ {
		for v := u + 1; v < nv; v++ {
			if rng.Float64() < prob {
				edges = append(edges, Edge{U: u, V: v})
			}
		}
	}
	return edges
}
