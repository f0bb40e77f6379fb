package engine

import (
	"github.com/distributed-tricount/pkg/graph"
)

// Counters is the process-wide quiescence accounting the driver and
// barrier both watch: how many ghost half-edges this rank still has to
// route (OutPending), and how many wedge-endpoints it still expects from
// peers (InPending) before it can safely vote to stop.
type Counters struct {
	OutPending int64
	InPending  int64
	Triangles  int64
}

func (c *Counters) Quiescent() bool { return c.OutPending <= 0 && c.InPending <= 0 }

// Enumerator walks a partition's flat edge array once per call, routing
// each ghost half-edge's candidate wedges into the destination peer's
// slot, pausing a slot's work the moment it fills and resuming later runs
// exactly where a full slot left off.
type Enumerator struct {
	Partition *graph.Partition
	Slots     map[int]*Slot
	Counters  *Counters
	Sender    Sender
	Sent      *int64
	myRank    int
}

func NewEnumerator(p *graph.Partition, slots map[int]*Slot, counters *Counters, sender Sender, sent *int64) *Enumerator {
	return &Enumerator{Partition: p, Slots: slots, Counters: counters, Sender: sender, Sent: sent, myRank: p.Rank}
}

// ResolveLocal handles every half-edge whose tail is owned by this rank:
// the closing vertex can be found by a direct binary search, so these
// wedges are counted once, at setup, and never touch a slot. It also
// seeds Counters.OutPending with the number of edges Run will actually have
// to route — every half-edge resolved here is never pending in the first
// place.
func (e *Enumerator) ResolveLocal() {
	p := e.Partition
	for i := int64(0); i < p.LNV(); i++ {
		e0, e1 := p.EdgeRangeFor(i)
		for m := e0; m < e1; m++ {
			a := p.Edges[m].Tail
			if p.Owner(a) != e.myRank {
				e.Counters.OutPending++
				continue
			}
			localA := p.GlobalToLocal(a)
			for n := m + 1; n < e1; n++ {
				b := p.Edges[n].Tail
				if !p.WithinMax(a, b) {
					break
				}
				if !(p.AboveMin(a, b) || p.AboveMin(b, a)) {
					continue
				}
				if p.HasEdge(localA, b) {
					e.Counters.Triangles++
				}
			}
			p.Edges[m].Active = false
		}
	}
}

// EstimateVolume walks every ghost half-edge the way Run eventually will,
// without mutating any state, and tallies how many wedge-endpoints this
// rank expects to emit to each peer. The coordinator uses the result to
// pre-credit every peer's in_pending and to size the fleet-wide slot width
// before any slot exists. Must run after the edge-range table has been
// merged fleet-wide, since within_max/above_min depend on it.
func (e *Enumerator) EstimateVolume() map[int]int64 {
	p := e.Partition
	volume := make(map[int]int64)
	for i := int64(0); i < p.LNV(); i++ {
		e0, e1 := p.EdgeRangeFor(i)
		for m := e0; m < e1; m++ {
			a := p.Edges[m].Tail
			peer := p.Owner(a)
			if peer == e.myRank {
				continue
			}
			for n := m + 1; n < e1; n++ {
				b := p.Edges[n].Tail
				if !p.WithinMax(a, b) {
					break
				}
				if !(p.AboveMin(a, b) || p.AboveMin(b, a)) {
					continue
				}
				volume[peer] += 2
			}
		}
	}
	return volume
}

// Run performs one full pass over the partition's flat edge array,
// enqueuing candidate pairs into each destination peer's slot. The moment
// a slot fills, its bookmark records exactly where to resume and the
// slot's payload is flushed immediately; the peer then stays locked to
// that exact edge — every other same-peer edge, earlier or later in this
// pass, is skipped — until a later pass revisits the bookmarked edge and
// finishes its inner walk without refilling. Without that lock a later
// same-peer edge that also fills the slot would overwrite the bookmark
// and strand the one it replaced: OutPending for the stranded edge would
// never reach zero and the rank would never quiesce.
func (e *Enumerator) Run() error {
	p := e.Partition
	total := len(p.Edges)

	for m := 0; m < total; m++ {
		edge := &p.Edges[m]
		if !edge.Active {
			continue
		}
		a := edge.Tail
		peer := p.Owner(a)
		if peer == e.myRank {
			continue // resolved once in ResolveLocal, never routed to a slot
		}

		slot := e.Slots[peer]
		if slot.Status == SlotInFlight {
			if m != slot.Bookmark.M {
				continue
			}
		} else if m < slot.Bookmark.M {
			continue
		}

		vertex := p.VertexOf(m)
		_, vEnd := p.EdgeRangeFor(vertex)

		n := m + 1
		if slot.Bookmark.HasK && slot.Bookmark.M == m {
			n = slot.Bookmark.K
		}

		filled := false
		for ; n < vEnd; n++ {
			b := p.Edges[n].Tail
			if !p.WithinMax(a, b) {
				break
			}
			if !(p.AboveMin(a, b) || p.AboveMin(b, a)) {
				continue
			}
			if slot.Full() {
				slot.Bookmark = Bookmark{M: m, K: n, HasK: true}
				slot.Status = SlotInFlight
				filled = true
				if err := flush(slot, e.Sender, e.Sent); err != nil {
					return err
				}
				break
			}
			slot.Insert(a, b)
		}

		if !filled {
			edge.Active = false
			e.Counters.OutPending--
			slot.Bookmark = Bookmark{M: m, HasK: false}
			slot.Status = SlotIdle
		}
	}
	return nil
}
