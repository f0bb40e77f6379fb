package engine

// BarrierTracker is the termination detector's partition-side half: it
// decides when this rank currently believes itself quiescent (out_pending
// and in_pending both zero) and whether that belief has changed since the
// last announcement, in which case the driver should (re-)send a
// BarrierEnter vote. A rank can leave and re-enter the barrier as many
// times as a late arrival un-quiesces it.
type BarrierTracker struct {
	counters *Counters
	entered  bool
	sent     int64
	received int64
}

func NewBarrierTracker(c *Counters) *BarrierTracker {
	return &BarrierTracker{counters: c}
}

// ShouldEnter reports whether this rank should (re-)announce itself to the
// coordinator this tick, given its current sent/received totals.
func (b *BarrierTracker) ShouldEnter(sent, received int64) bool {
	if !b.counters.Quiescent() {
		b.entered = false
		return false
	}
	if b.entered && b.sent == sent && b.received == received {
		return false
	}
	b.entered = true
	b.sent, b.received = sent, received
	return true
}

// barrierVote is one rank's latest reported view of its own send/receive
// totals.
type barrierVote struct {
	sent, received int64
}

// BarrierCoordinator accumulates BarrierEnter votes from every rank and
// declares the barrier satisfied once every rank has voted and the
// fleet-wide sent total equals the fleet-wide received total: nothing is
// left in flight.
type BarrierCoordinator struct {
	numProcs int
	votes    map[int]barrierVote
}

func NewBarrierCoordinator(numProcs int) *BarrierCoordinator {
	return &BarrierCoordinator{numProcs: numProcs, votes: make(map[int]barrierVote)}
}

// Record stores rank's latest vote and reports whether the barrier is now
// satisfied.
func (c *BarrierCoordinator) Record(rank int, sent, received int64) bool {
	c.votes[rank] = barrierVote{sent: sent, received: received}
	return c.Done()
}

func (c *BarrierCoordinator) Done() bool {
	if len(c.votes) != c.numProcs {
		return false
	}
	var totalSent, totalReceived int64
	for _, v := range c.votes {
		totalSent += v.sent
		totalReceived += v.received
	}
	return totalSent == totalReceived
}
