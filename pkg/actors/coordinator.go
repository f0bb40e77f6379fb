package actors

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/distributed-tricount/internal/timing"
	"github.com/distributed-tricount/pkg/actor"
	"github.com/distributed-tricount/pkg/engine"
	"github.com/distributed-tricount/pkg/graph"
	"github.com/distributed-tricount/pkg/graphio"
	"github.com/distributed-tricount/pkg/messages"
)

// CoordinatorActor mediates the three setup-time collectives the
// actor-mailbox transport has no native primitive for (edge-range
// all-reduce, volume all-to-all, buffer-width all-reduce-max), hosts the
// non-blocking barrier's star-topology vote accumulation, and performs the
// final reduce-sum-divide-by-3 once every rank reports its local count.
type CoordinatorActor struct {
	*actor.BaseActor

	numProcs   int
	dataPath   string
	bufferHint int
	falsePos   float64
	verifyHits bool

	topo *graph.Topology

	edgeRangeTable []int64
	edgeRangeSeen  map[int]bool

	volumeReports map[int][]int64 // rank -> ToPeer

	barrier *engine.BarrierCoordinator

	localCounts map[int]int64

	watch    *timing.Watch
	done     chan int64
	doneOnce bool
}

type CoordinatorConfig struct {
	NumProcs   int
	DataPath   string
	BufferHint int
	FalsePos   float64
	VerifyHits bool
}

func NewCoordinatorActor(pid actor.PID, system *actor.ActorSystem, cfg CoordinatorConfig) *CoordinatorActor {
	return &CoordinatorActor{
		BaseActor:     actor.NewBaseActor(pid, system, 4096),
		numProcs:      cfg.NumProcs,
		dataPath:      cfg.DataPath,
		bufferHint:    cfg.BufferHint,
		falsePos:      cfg.FalsePos,
		verifyHits:    cfg.VerifyHits,
		edgeRangeSeen: make(map[int]bool),
		volumeReports: make(map[int][]int64),
		barrier:       engine.NewBarrierCoordinator(cfg.NumProcs),
		localCounts:   make(map[int]int64),
		watch:         &timing.Watch{},
		done:          make(chan int64, 1),
	}
}

// WaitFinalCount blocks until the fleet-wide reduction completes and
// returns the triangle count, or returns an error if ctx is canceled
// first. Intended for a single-process caller (cmd/standalone) that holds
// the coordinator directly rather than receiving FinalCount as a message.
func (c *CoordinatorActor) WaitFinalCount(ctx context.Context) (int64, error) {
	select {
	case total := <-c.done:
		return total, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (c *CoordinatorActor) Start(ctx context.Context) {
	c.Ctx, c.Cancel = context.WithCancel(ctx)
	c.Wg.Add(1)
	go func() {
		defer c.Wg.Done()
		c.run()
	}()
}

func (c *CoordinatorActor) run() {
	log.Info().Msg("coordinator started")
	for {
		select {
		case <-c.Ctx.Done():
			return
		case msg, ok := <-c.Mailbox.Receive():
			if !ok {
				return
			}
			c.Receive(c.Ctx, msg)
		}
	}
}

func (c *CoordinatorActor) Receive(ctx context.Context, msg actor.Message) {
	switch m := msg.(type) {
	case *messages.EdgeRangeContribution:
		c.handleEdgeRangeContribution(m)
	case *messages.VolumeReport:
		c.handleVolumeReport(m)
	case *messages.BarrierEnter:
		c.handleBarrierEnter(m)
	case *messages.LocalCount:
		c.handleLocalCount(m)
	default:
		log.Warn().Str("type", msg.Type()).Msg("coordinator: unhandled message")
	}
}

// StartSetup kicks off the whole count: reads the edge list once to learn
// the vertex count, partitions it evenly across numProcs, and fans out one
// AssignPartition per partition actor.
func (c *CoordinatorActor) StartSetup() error {
	c.watch.Start()

	edges, err := graphio.ReadEdgeList(c.dataPath)
	if err != nil {
		return fmt.Errorf("actors: coordinator: reading %s: %w", c.dataPath, err)
	}
	nv := graphio.MaxVertex(edges) + 1
	if nv <= 0 {
		return fmt.Errorf("actors: coordinator: edge list %s has no vertices", c.dataPath)
	}

	c.topo = graph.EvenTopology(nv, c.numProcs)
	c.edgeRangeTable = make([]int64, 2*nv)
	for v := int64(0); v < nv; v++ {
		c.edgeRangeTable[2*v] = nv
		c.edgeRangeTable[2*v+1] = -1
	}

	partitionPIDs := c.System.GetActors(actor.PartitionType)
	if len(partitionPIDs) != c.numProcs {
		return fmt.Errorf("actors: coordinator: expected %d partition actors, found %d", c.numProcs, len(partitionPIDs))
	}

	for rank, pid := range partitionPIDs {
		c.Send(pid, &messages.AssignPartition{
			Rank:       rank,
			NumProcs:   c.numProcs,
			Bases:      c.topo.Bases,
			DataPath:   c.dataPath,
			BufferHint: c.bufferHint,
			FalsePos:   c.falsePos,
			VerifyHits: c.verifyHits,
		})
	}
	return nil
}

func (c *CoordinatorActor) handleEdgeRangeContribution(m *messages.EdgeRangeContribution) {
	if len(m.Rows) != len(c.edgeRangeTable) {
		log.Fatal().Int("rank", m.Rank).Msg("coordinator: edge-range contribution length mismatch")
	}
	for i := 0; i < len(m.Rows); i += 2 {
		if m.Rows[i+1] < 0 {
			continue // this rank has no data for this vertex
		}
		c.edgeRangeTable[i] = m.Rows[i]
		c.edgeRangeTable[i+1] = m.Rows[i+1]
	}
	c.edgeRangeSeen[m.Rank] = true

	if len(c.edgeRangeSeen) == c.numProcs {
		log.Info().Msg("coordinator: edge-range table complete, broadcasting")
		c.System.Broadcast(actor.PartitionType, &messages.EdgeRangeTable{Table: c.edgeRangeTable})
	}
}

func (c *CoordinatorActor) handleVolumeReport(m *messages.VolumeReport) {
	c.volumeReports[m.Rank] = m.ToPeer

	if len(c.volumeReports) != c.numProcs {
		return
	}

	log.Info().Msg("coordinator: volume exchange complete, sizing buffers")

	outPending := make([]int64, c.numProcs)
	inPending := make([]int64, c.numProcs)
	for rank, toPeer := range c.volumeReports {
		for peer, n := range toPeer {
			outPending[rank] += n
			inPending[peer] += n
		}
	}

	slotWidth := 0
	for rank := 0; rank < c.numProcs; rank++ {
		candidate := 2 * (outPending[rank] + inPending[rank])
		width := c.bufferHint
		if candidate > 0 && int64(width) > candidate {
			width = int(candidate)
		}
		if width > slotWidth {
			slotWidth = width
		}
	}
	if slotWidth < 8 {
		slotWidth = 8
	}
	if slotWidth%2 != 0 {
		slotWidth++
	}

	partitionPIDs := c.System.GetActors(actor.PartitionType)
	for rank, pid := range partitionPIDs {
		c.Send(pid, &messages.VolumeCredit{SlotWidth: slotWidth, InPending: inPending[rank]})
	}
	c.System.Broadcast(actor.PartitionType, &messages.StartCounting{})
}

func (c *CoordinatorActor) handleBarrierEnter(m *messages.BarrierEnter) {
	if c.barrier.Record(m.Rank, m.Sent, m.Received) {
		log.Info().Msg("coordinator: fleet-wide barrier satisfied")
		c.System.Broadcast(actor.PartitionType, &messages.BarrierDone{})
	}
}

func (c *CoordinatorActor) handleLocalCount(m *messages.LocalCount) {
	c.localCounts[m.Rank] = m.Count

	if len(c.localCounts) != c.numProcs {
		return
	}

	var sum int64
	for _, n := range c.localCounts {
		sum += n
	}
	if sum%3 != 0 {
		log.Fatal().Int64("sum", sum).Msg("coordinator: pre-divisor triangle sum not divisible by 3")
	}
	total := sum / 3

	log.Info().Int64("triangles", total).Dur("elapsed", c.watch.Elapsed()).Msg("count complete")
	c.System.Broadcast(actor.PartitionType, &messages.FinalCount{Triangles: total})

	if !c.doneOnce {
		c.doneOnce = true
		c.done <- total
	}
}

// FinalCount returns the reduced triangle count once every rank has
// reported in, or (0, false) while the count is still in progress.
func (c *CoordinatorActor) FinalCount() (int64, bool) {
	if len(c.localCounts) != c.numProcs {
		return 0, false
	}
	var sum int64
	for _, n := range c.localCounts {
		sum += n
	}
	return sum / 3, true
}
