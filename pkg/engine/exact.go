package engine

import "github.com/distributed-tricount/pkg/graph"

// ExactTriangleCount brute-forces the global triangle count with the
// classic forward algorithm (each triangle credited once, at its
// lowest-numbered vertex), replaying the same within_max/above_min-free
// adjacency walk the Bloom-based pipeline approximates, but against every
// partition's real adjacency held directly in one address space.
//
// Only usable when every shard of the graph lives in the same process
// (cmd/standalone's --verify-hits path, and tests): it is the independent
// reference the approximate, Bloom-filter pipeline is checked against, not
// a production code path.
func ExactTriangleCount(partitions []*graph.Partition) int64 {
	byRank := make(map[int]*graph.Partition, len(partitions))
	for _, p := range partitions {
		byRank[p.Rank] = p
	}

	var total int64
	for _, p := range partitions {
		for i := int64(0); i < p.LNV(); i++ {
			global := p.LocalToGlobal(i)
			e0, e1 := p.EdgeRangeFor(i)
			for m := e0; m < e1; m++ {
				a := p.Edges[m].Tail
				if a <= global {
					continue
				}
				owner := byRank[p.Owner(a)]
				if owner == nil {
					continue
				}
				localA := owner.GlobalToLocal(a)
				for n := m + 1; n < e1; n++ {
					b := p.Edges[n].Tail
					if owner.HasEdge(localA, b) {
						total++
					}
				}
			}
		}
	}
	return total
}
