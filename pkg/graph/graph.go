// Package graph implements the partitioned-graph capability set the
// wedge-closing engine runs against: lnv, nv, base, owner, edge_range,
// edge, global_to_local, local_to_global, plus the edge-range pruning
// index that lets the enumerator stop walking a vertex's adjacency early.
//
// Edges are stored CSR-style: one flat, offset-indexed array rather than a
// map of per-vertex slices, so edge_range/edge/edge_stat are all O(1) or
// O(log n) lookups instead of map dereferences.
package graph

import (
	"fmt"
	"sort"
)

// EdgeStat is one half-edge: Tail plus the monotone Active flag the wedge
// enumerator uses to skip fully-processed source edges on later passes.
type EdgeStat struct {
	Tail   int64
	Active bool
}

// Topology is the fleet-wide vertex-to-owner map: contiguous blocks of
// global ids assigned to each rank. Bases has length NumProcs+1;
// Bases[r]..Bases[r+1] is rank r's range.
type Topology struct {
	Bases []int64
}

func NewTopology(bases []int64) (*Topology, error) {
	if len(bases) < 2 {
		return nil, fmt.Errorf("graph: topology needs at least one partition")
	}
	for i := 1; i < len(bases); i++ {
		if bases[i] < bases[i-1] {
			return nil, fmt.Errorf("graph: topology bases must be non-decreasing")
		}
	}
	return &Topology{Bases: bases}, nil
}

// EvenTopology splits nv vertices into numProcs contiguous, near-equal
// blocks. The engine's correctness does not depend on how vertices are
// split across ranks, so this is one valid partition among many.
func EvenTopology(nv int64, numProcs int) *Topology {
	bases := make([]int64, numProcs+1)
	base, rem := nv/int64(numProcs), nv%int64(numProcs)
	for r := 0; r < numProcs; r++ {
		bases[r+1] = bases[r] + base
		if int64(r) < rem {
			bases[r+1]++
		}
	}
	return &Topology{Bases: bases}
}

func (t *Topology) NumProcs() int       { return len(t.Bases) - 1 }
func (t *Topology) NV() int64           { return t.Bases[len(t.Bases)-1] }
func (t *Topology) Base(rank int) int64 { return t.Bases[rank] }
func (t *Topology) LNV(rank int) int64  { return t.Bases[rank+1] - t.Bases[rank] }

// Owner maps a global vertex id to its owning rank in O(log numProcs).
func (t *Topology) Owner(v int64) int {
	lo, hi := 0, len(t.Bases)-2
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if t.Bases[mid] <= v {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo
}

// Partition is one process's slice of the graph: a CSR-style flat edge
// array plus the fleet-wide edge-range pruning table. Edges is built per
// local vertex via AddHalfEdge and frozen (sorted, offsets computed) via
// Finalize.
type Partition struct {
	Topology *Topology
	Rank     int

	Edges   []EdgeStat // flat, CSR-ordered: vertex i's edges are Edges[Offsets[i]:Offsets[i+1]]
	Offsets []int      // length LNV+1

	pending   [][]int64 // staging area before Finalize; per local vertex
	EdgeRange []int64   // length 2*NV; [2v]=min tail, [2v+1]=max tail
}

func NewPartition(topo *Topology, rank int) *Partition {
	lnv := int(topo.LNV(rank))
	p := &Partition{
		Topology:  topo,
		Rank:      rank,
		pending:   make([][]int64, lnv),
		EdgeRange: make([]int64, 2*topo.NV()),
	}
	// Every row starts as "no data yet" (max=-1) so MergeEdgeRange can tell
	// an unpopulated remote row apart from a genuinely empty adjacency.
	for v := int64(0); v < topo.NV(); v++ {
		p.EdgeRange[2*v] = topo.NV()
		p.EdgeRange[2*v+1] = -1
	}
	return p
}

func (p *Partition) Base() int64       { return p.Topology.Base(p.Rank) }
func (p *Partition) LNV() int64        { return p.Topology.LNV(p.Rank) }
func (p *Partition) NV() int64         { return p.Topology.NV() }
func (p *Partition) Owner(v int64) int { return p.Topology.Owner(v) }

func (p *Partition) GlobalToLocal(v int64) int64 { return v - p.Base() }
func (p *Partition) LocalToGlobal(i int64) int64 { return p.Base() + i }

// AddHalfEdge stages a half-edge for local vertex i; call Finalize once all
// edges are staged.
func (p *Partition) AddHalfEdge(localVertex int64, tail int64) {
	p.pending[localVertex] = append(p.pending[localVertex], tail)
}

// Finalize sorts each local vertex's staged tails ascending (the
// enumerator's pruning depends on this order), flattens them into the CSR
// Edges/Offsets arrays, and seeds this rank's own rows of the edge-range
// table ahead of the setup-time exchange.
func (p *Partition) Finalize() {
	lnv := len(p.pending)
	p.Offsets = make([]int, lnv+1)
	total := 0
	for i := 0; i < lnv; i++ {
		sort.Slice(p.pending[i], func(a, b int) bool { return p.pending[i][a] < p.pending[i][b] })
		total += len(p.pending[i])
	}

	p.Edges = make([]EdgeStat, 0, total)
	for i := 0; i < lnv; i++ {
		p.Offsets[i] = len(p.Edges)
		for _, tail := range p.pending[i] {
			p.Edges = append(p.Edges, EdgeStat{Tail: tail, Active: true})
		}

		global := p.LocalToGlobal(int64(i))
		if n := len(p.pending[i]); n > 0 {
			p.EdgeRange[2*global] = p.pending[i][0]
			p.EdgeRange[2*global+1] = p.pending[i][n-1]
		} else {
			p.EdgeRange[2*global] = p.NV()
			p.EdgeRange[2*global+1] = -1
		}
	}
	p.Offsets[lnv] = len(p.Edges)
	p.pending = nil
}

// EdgeRangeFor returns the CSR slice bounds [e0,e1) for local vertex v.
func (p *Partition) EdgeRangeFor(v int64) (int, int) {
	return p.Offsets[v], p.Offsets[v+1]
}

// VertexOf returns the local vertex owning flat edge index e, via binary
// search over Offsets.
func (p *Partition) VertexOf(e int) int64 {
	i := sort.Search(len(p.Offsets)-1, func(i int) bool { return p.Offsets[i+1] > e })
	return int64(i)
}

// MergeEdgeRange folds another rank's contribution into this rank's copy of
// the edge-range table. Each vertex's row is owned by exactly one rank, so
// a fleet-wide reduction over these tables is really an
// overwrite-with-the-owner's-row, not a sum (the coordinator merges the
// same way in pkg/actors/coordinator.go's handleEdgeRangeContribution).
func (p *Partition) MergeEdgeRange(other []int64) error {
	if len(other) != len(p.EdgeRange) {
		return fmt.Errorf("graph: edge-range table length mismatch: got %d want %d", len(other), len(p.EdgeRange))
	}
	for i := 0; i < len(other); i += 2 {
		if other[i+1] < 0 {
			continue // contributor has no data for this vertex
		}
		p.EdgeRange[i] = other[i]
		p.EdgeRange[i+1] = other[i+1]
	}
	return nil
}

func (p *Partition) minTail(global int64) int64 { return p.EdgeRange[2*global] }
func (p *Partition) maxTail(global int64) int64 { return p.EdgeRange[2*global+1] }

// WithinMax reports y <= maxTail(x): the sorted-order break condition the
// enumerator uses to stop walking a vertex's adjacency early.
func (p *Partition) WithinMax(x, y int64) bool { return y <= p.maxTail(x) }

// AboveMin reports y >= minTail(x): the skip condition pruning pairs that
// cannot possibly close.
func (p *Partition) AboveMin(x, y int64) bool { return y >= p.minTail(x) }

// HasEdge binary-searches local vertex u's adjacency for tail v, used to
// resolve wholly-local wedges once at setup time.
func (p *Partition) HasEdge(localU int64, v int64) bool {
	e0, e1 := p.EdgeRangeFor(localU)
	nbrs := p.Edges[e0:e1]
	i := sort.Search(len(nbrs), func(i int) bool { return nbrs[i].Tail >= v })
	return i < len(nbrs) && nbrs[i].Tail == v
}
