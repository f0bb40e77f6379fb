package graph

import "testing"

func TestEvenTopologyOwnerCoversAllVertices(t *testing.T) {
	topo := EvenTopology(17, 4)
	for v := int64(0); v < 17; v++ {
		r := topo.Owner(v)
		if v < topo.Base(r) || v >= topo.Base(r)+topo.LNV(r) {
			t.Fatalf("vertex %d mapped to rank %d outside its own range", v, r)
		}
	}
	total := int64(0)
	for r := 0; r < topo.NumProcs(); r++ {
		total += topo.LNV(r)
	}
	if total != 17 {
		t.Fatalf("partition ranges do not cover all 17 vertices, got %d", total)
	}
}

func buildTestPartition(t *testing.T) *Partition {
	t.Helper()
	topo := EvenTopology(6, 2) // rank 0: {0,1,2}, rank 1: {3,4,5}
	p := NewPartition(topo, 0)

	// vertex 0 (global 0): neighbors 2,3,5
	p.AddHalfEdge(0, 2)
	p.AddHalfEdge(0, 5)
	p.AddHalfEdge(0, 3)
	// vertex 1 (global 1): neighbor 2
	p.AddHalfEdge(1, 2)
	// vertex 2 (global 2): neighbors 0,1
	p.AddHalfEdge(2, 0)
	p.AddHalfEdge(2, 1)
	p.Finalize()
	return p
}

func TestFinalizeSortsAdjacencyAndBuildsOffsets(t *testing.T) {
	p := buildTestPartition(t)

	e0, e1 := p.EdgeRangeFor(0)
	got := []int64{}
	for _, e := range p.Edges[e0:e1] {
		got = append(got, e.Tail)
	}
	want := []int64{2, 3, 5}
	if len(got) != len(want) {
		t.Fatalf("vertex 0 adjacency length = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("vertex 0 adjacency not sorted ascending: got %v, want %v", got, want)
		}
	}
}

func TestVertexOfInvertsFlatEdgeIndex(t *testing.T) {
	p := buildTestPartition(t)
	for v := int64(0); v < p.LNV(); v++ {
		e0, e1 := p.EdgeRangeFor(v)
		for e := e0; e < e1; e++ {
			if got := p.VertexOf(e); got != v {
				t.Fatalf("VertexOf(%d) = %d, want %d", e, got, v)
			}
		}
	}
}

func TestWithinMaxAboveMinPruning(t *testing.T) {
	p := buildTestPartition(t)

	// vertex 0's own row: min=2, max=5
	if !p.WithinMax(0, 5) {
		t.Errorf("WithinMax(0,5) = false, want true (5 is vertex 0's own max tail)")
	}
	if p.WithinMax(0, 6) {
		t.Errorf("WithinMax(0,6) = true, want false (6 exceeds vertex 0's max tail)")
	}
	if !p.AboveMin(0, 2) {
		t.Errorf("AboveMin(0,2) = false, want true (2 is vertex 0's own min tail)")
	}
	if p.AboveMin(0, 1) {
		t.Errorf("AboveMin(0,1) = true, want false (1 is below vertex 0's min tail)")
	}
}

func TestHasEdgeBinarySearch(t *testing.T) {
	p := buildTestPartition(t)
	if !p.HasEdge(0, 3) {
		t.Errorf("HasEdge(0,3) = false, want true")
	}
	if p.HasEdge(0, 4) {
		t.Errorf("HasEdge(0,4) = true, want false")
	}
}

func TestMergeEdgeRangeRejectsWrongLength(t *testing.T) {
	p := buildTestPartition(t)
	if err := p.MergeEdgeRange([]int64{1, 2, 3}); err == nil {
		t.Fatalf("expected error for mismatched edge-range length")
	}
}

func TestGlobalLocalRoundTrip(t *testing.T) {
	topo := EvenTopology(10, 3)
	p := NewPartition(topo, 2)
	for i := int64(0); i < p.LNV(); i++ {
		g := p.LocalToGlobal(i)
		if got := p.GlobalToLocal(g); got != i {
			t.Errorf("GlobalToLocal(LocalToGlobal(%d)) = %d, want %d", i, got, i)
		}
	}
}
