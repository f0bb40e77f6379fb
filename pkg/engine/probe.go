package engine

import (
	"fmt"

	"github.com/distributed-tricount/pkg/bloom"
	"github.com/distributed-tricount/pkg/graph"
)

// Receiver drains incoming Bloom filter payloads into a single
// receive-side filter and re-tests every local half-edge against it. The
// filter is reused across messages rather than reallocated per receive.
type Receiver struct {
	Partition *graph.Partition
	Counters  *Counters
	filter    *bloom.Filter
	bufSize   int
}

func NewReceiver(p *graph.Partition, counters *Counters, m, k int) (*Receiver, error) {
	f, err := bloom.NewSized(m, k)
	if err != nil {
		return nil, fmt.Errorf("engine: receiver filter: %w", err)
	}
	return &Receiver{Partition: p, Counters: counters, filter: f, bufSize: m}, nil
}

// Probe loads one payload into the shared receive filter, decrements
// in_pending by the fleet-wide buffer width (clamped at zero — the
// sender's last message to us may have been only partially full), and
// re-enumerates every local half-edge against the filter, counting a hit
// per closed wedge.
func (r *Receiver) Probe(payload []byte) error {
	if err := r.filter.LoadBytes(payload); err != nil {
		return err
	}

	r.Counters.InPending -= int64(r.bufSize)
	if r.Counters.InPending < 0 {
		r.Counters.InPending = 0
	}

	p := r.Partition
	for i := int64(0); i < p.LNV(); i++ {
		e0, e1 := p.EdgeRangeFor(i)
		global := p.LocalToGlobal(i)
		for m := e0; m < e1; m++ {
			a := p.Edges[m].Tail
			if r.filter.Contains(global, a) {
				r.Counters.Triangles++
			}
		}
	}
	return nil
}
