package messages

import "github.com/distributed-tricount/pkg/actor"

// BarrierEnter is a rank's non-blocking vote that it currently believes
// itself quiescent: out_pending and in_pending both zero. A rank may enter
// the barrier, keep running, and enter again with updated counts if a
// message arrives afterward that un-quiesces it; the coordinator only
// declares the barrier satisfied once every rank's latest vote agrees.
type BarrierEnter struct {
	Rank     int       `json:"rank"`
	Sender   actor.PID `json:"sender"`
	Sent     int64     `json:"sent"`
	Received int64     `json:"received"`
}

func (m *BarrierEnter) Type() string { return "BarrierEnter" }
func (m *BarrierEnter) Tag() int     { return TagBarrier }

// BarrierDone is the coordinator's broadcast once every rank has voted and,
// over every rank's latest vote, the fleet-wide Sent total equals the
// fleet-wide Received total: nothing is in flight, counting is over.
type BarrierDone struct{}

func (m *BarrierDone) Type() string { return "BarrierDone" }
func (m *BarrierDone) Tag() int     { return TagBarrier }
