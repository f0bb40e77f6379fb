package graphio

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"
)

func TestReadEdgeListRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "edges.csv")

	want := []Edge{{U: 0, V: 1}, {U: 1, V: 2}, {U: 0, V: 2}}
	if err := WriteEdgeList(path, want); err != nil {
		t.Fatalf("WriteEdgeList: %v", err)
	}

	got, err := ReadEdgeList(path)
	if err != nil {
		t.Fatalf("ReadEdgeList: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d edges, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("edge %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestReadEdgeListRejectsSelfLoop(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "edges.csv")
	if err := os.WriteFile(path, []byte("u,v\n3,3\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := ReadEdgeList(path); err == nil {
		t.Fatal("expected an error for a self-loop edge, got nil")
	}
}

func TestMaxVertex(t *testing.T) {
	if got := MaxVertex(nil); got != -1 {
		t.Errorf("MaxVertex(nil) = %d, want -1", got)
	}
	edges := []Edge{{U: 3, V: 1}, {U: 2, V: 7}}
	if got := MaxVertex(edges); got != 7 {
		t.Errorf("MaxVertex = %d, want 7", got)
	}
}

func TestGenerateErdosRenyiStaysWithinVertexRange(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	edges := GenerateErdosRenyi(20, 0.3, rng)
	for _, e := range edges {
		if e.U < 0 || e.U >= 20 || e.V < 0 || e.V >= 20 {
			t.Fatalf("edge %+v out of range [0,20)", e)
		}
		if e.U >= e.V {
			t.Fatalf("edge %+v not in canonical u<v form", e)
		}
	}
}
