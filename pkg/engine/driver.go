package engine

import (
	"fmt"

	"github.com/distributed-tricount/pkg/graph"
)

// ProbeSource yields at most one pending candidate-pair payload per call —
// the non-blocking probe/drain step. ok is false when nothing is waiting.
type ProbeSource interface {
	TryReceive() (payload []byte, ok bool)
}

// BarrierPort lets the driver announce its current quiescence vote to the
// coordinator and learn when the fleet-wide barrier has completed.
type BarrierPort interface {
	Announce(sent, received int64) error
	Done() bool
}

// Driver is the single-threaded counting loop: one Step call interleaves
// production, sending, receiving, and quiescence testing, matching the
// non-suspending, cooperatively-multiplexed scheduling model the rest of
// the engine assumes. A caller (typically a partition actor's message
// loop) calls Step once per tick until Finished reports true.
type Driver struct {
	partition   *graph.Partition
	enumerator  *Enumerator
	receiver    *Receiver
	slots       map[int]*Slot
	counters    *Counters
	tracker     *BarrierTracker
	probeSource ProbeSource
	barrierPort BarrierPort

	sentFlush bool
	done      bool

	sent     int64
	received int64
}

func NewDriver(p *graph.Partition, slots map[int]*Slot, counters *Counters, receiver *Receiver, sender Sender, probeSource ProbeSource, barrierPort BarrierPort) *Driver {
	d := &Driver{
		partition:   p,
		slots:       slots,
		counters:    counters,
		receiver:    receiver,
		probeSource: probeSource,
		barrierPort: barrierPort,
	}
	d.enumerator = NewEnumerator(p, slots, counters, sender, &d.sent)
	d.tracker = NewBarrierTracker(counters)
	return d
}

// Finished reports whether the fleet-wide barrier has completed and this
// rank's local triangle count is final.
func (d *Driver) Finished() bool { return d.done }

// Triangles returns the local triangle count accumulated so far. Only
// meaningful as a final answer once Finished reports true.
func (d *Driver) Triangles() int64 { return d.counters.Triangles }

func (d *Driver) flushAll() error {
	for _, s := range d.slots {
		if err := flush(s, d.enumerator.Sender, &d.sent); err != nil {
			return err
		}
	}
	return nil
}

// Step runs one iteration of the counting loop: produce, send, receive,
// test, quiesce.
func (d *Driver) Step() error {
	if d.done {
		return nil
	}

	if d.counters.OutPending > 0 {
		if err := d.enumerator.Run(); err != nil {
			return fmt.Errorf("engine: driver enumerate: %w", err)
		}
	}
	// Check OutPending again (rather than branching on the pre-Run value):
	// a pass that drives it to zero must flush in this same tick, or the
	// quiescence check below would announce the barrier before the slots
	// still holding unflushed candidates were ever sent.
	if d.counters.OutPending <= 0 && !d.sentFlush {
		if err := d.flushAll(); err != nil {
			return fmt.Errorf("engine: driver flush: %w", err)
		}
		d.sentFlush = true
	}

	if payload, ok := d.probeSource.TryReceive(); ok {
		if err := d.receiver.Probe(payload); err != nil {
			return fmt.Errorf("engine: driver probe: %w", err)
		}
		d.received++
	}

	// Re-announce every time our vote changes, even after an earlier
	// announcement — a rank that received more messages since its last
	// vote must update it, or the fleet-wide sent==received tally can get
	// stuck short forever. ShouldEnter is the single source of truth for
	// whether the vote actually changed.
	if d.tracker.ShouldEnter(d.sent, d.received) {
		if err := d.barrierPort.Announce(d.sent, d.received); err != nil {
			return fmt.Errorf("engine: driver announce barrier: %w", err)
		}
	}

	if d.counters.Quiescent() && d.barrierPort.Done() {
		d.done = true
	}
	return nil
}
