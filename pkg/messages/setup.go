package messages

import "github.com/distributed-tricount/pkg/actor"

// AssignPartition is the coordinator's initial fan-out: tells a partition
// actor its rank, the fleet-wide vertex topology, and where to read its
// slice of the edge list from.
type AssignPartition struct {
	Rank       int     `json:"rank"`
	NumProcs   int     `json:"num_procs"`
	Bases      []int64 `json:"bases"`
	DataPath   string  `json:"data_path"`
	BufferHint int     `json:"buffer_hint"`
	FalsePos   float64 `json:"false_positive"`
	VerifyHits bool    `json:"verify_hits"`
}

func (m *AssignPartition) Type() string { return "AssignPartition" }
func (m *AssignPartition) Tag() int     { return TagSetup }

// EdgeRangeContribution reports one rank's row of the edge-range pruning
// table back to the coordinator once local ingestion finishes.
type EdgeRangeContribution struct {
	Rank   int       `json:"rank"`
	Rows   []int64   `json:"rows"` // this rank's vertices only, at their global offset
	Sender actor.PID `json:"sender"`
}

func (m *EdgeRangeContribution) Type() string { return "EdgeRangeContribution" }
func (m *EdgeRangeContribution) Tag() int     { return TagSetup }

// EdgeRangeTable is the coordinator's reply: the merged, fleet-wide table,
// standing in for an all-reduce-sum the actor-mailbox transport has no
// native primitive for.
type EdgeRangeTable struct {
	Table []int64 `json:"table"`
}

func (m *EdgeRangeTable) Type() string { return "EdgeRangeTable" }
func (m *EdgeRangeTable) Tag() int     { return TagSetup }

// VolumeReport tells the coordinator how many wedge-endpoints (two per
// candidate pair) this rank expects to send each peer, counted by a dry
// enumeration pass before any buffers are allocated.
type VolumeReport struct {
	Rank   int       `json:"rank"`
	ToPeer []int64   `json:"to_peer"` // length NumProcs, indexed by destination rank
	Sender actor.PID `json:"sender"`
}

func (m *VolumeReport) Type() string { return "VolumeReport" }
func (m *VolumeReport) Tag() int     { return TagSetup }

// VolumeCredit is the coordinator's reply to VolumeReport: the common
// buffer width (the max over ranks of min(buffer hint, 2*(out+in)), with
// out and in being that rank's ToPeer row and column sums, floored at 8 and
// rounded up to even) and this rank's pre-credited in_pending total (the
// transpose column sum of every ToPeer vector).
type VolumeCredit struct {
	SlotWidth int   `json:"slot_width"`
	InPending int64 `json:"in_pending"`
}

func (m *VolumeCredit) Type() string { return "VolumeCredit" }
func (m *VolumeCredit) Tag() int     { return TagSetup }

// StartCounting releases every partition actor into its counting loop once
// setup has fully quiesced fleet-wide.
type StartCounting struct{}

func (m *StartCounting) Type() string { return "StartCounting" }
func (m *StartCounting) Tag() int     { return TagSetup }
