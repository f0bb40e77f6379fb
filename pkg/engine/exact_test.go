package engine

import (
	"testing"

	"github.com/distributed-tricount/pkg/graph"
)

func TestExactTriangleCountSingleRank(t *testing.T) {
	topo := graph.EvenTopology(3, 1)
	p := graph.NewPartition(topo, 0)
	p.AddHalfEdge(0, 1)
	p.AddHalfEdge(0, 2)
	p.AddHalfEdge(1, 0)
	p.AddHalfEdge(1, 2)
	p.AddHalfEdge(2, 0)
	p.AddHalfEdge(2, 1)
	p.Finalize()

	if got := ExactTriangleCount([]*graph.Partition{p}); got != 1 {
		t.Errorf("ExactTriangleCount = %d, want 1", got)
	}
}

func TestExactTriangleCountAcrossPartitions(t *testing.T) {
	topo := graph.EvenTopology(3, 3)

	p0 := graph.NewPartition(topo, 0)
	p0.AddHalfEdge(0, 1)
	p0.AddHalfEdge(0, 2)
	p0.Finalize()

	p1 := graph.NewPartition(topo, 1)
	p1.AddHalfEdge(0, 0)
	p1.AddHalfEdge(0, 2)
	p1.Finalize()

	p2 := graph.NewPartition(topo, 2)
	p2.AddHalfEdge(0, 0)
	p2.AddHalfEdge(0, 1)
	p2.Finalize()

	got := ExactTriangleCount([]*graph.Partition{p0, p1, p2})
	if got != 1 {
		t.Errorf("ExactTriangleCount = %d, want 1", got)
	}
}

func TestExactTriangleCountNoTriangle(t *testing.T) {
	topo := graph.EvenTopology(3, 1)
	p := graph.NewPartition(topo, 0)
	p.AddHalfEdge(0, 1)
	p.AddHalfEdge(1, 0)
	p.Finalize()

	if got := ExactTriangleCount([]*graph.Partition{p}); got != 0 {
		t.Errorf("ExactTriangleCount = %d, want 0 for a single edge", got)
	}
}
