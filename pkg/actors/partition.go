package actors

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/distributed-tricount/internal/timing"
	"github.com/distributed-tricount/pkg/actor"
	"github.com/distributed-tricount/pkg/engine"
	"github.com/distributed-tricount/pkg/graph"
	"github.com/distributed-tricount/pkg/graphio"
	"github.com/distributed-tricount/pkg/messages"
)

// PartitionActor owns one rank's slice of the graph and drives its
// engine.Driver to completion, translating between actor messages and the
// driver's pull-based Sender/ProbeSource/BarrierPort ports.
type PartitionActor struct {
	*actor.BaseActor

	coordinator actor.PID
	rank        int

	partition *graph.Partition
	counters  *engine.Counters
	driver    *engine.Driver

	pendingSlotWidth int
	dataQueue        chan []byte
	barrierDone      atomic.Bool
	shuttingDown     atomic.Bool

	watch *timing.Watch
}

func NewPartitionActor(pid actor.PID, system *actor.ActorSystem, coordinatorPID actor.PID, rank int) *PartitionActor {
	return &PartitionActor{
		BaseActor:   actor.NewBaseActor(pid, system, 4096),
		coordinator: coordinatorPID,
		rank:        rank,
		dataQueue:   make(chan []byte, 256),
		watch:       &timing.Watch{},
	}
}

func (p *PartitionActor) Start(ctx context.Context) {
	p.Ctx, p.Cancel = context.WithCancel(ctx)
	p.Wg.Add(1)
	go func() {
		defer p.Wg.Done()
		p.run()
	}()
}

func (p *PartitionActor) run() {
	log.Info().Int("rank", p.rank).Msg("partition actor started")
	for {
		select {
		case <-p.Ctx.Done():
			return
		case msg, ok := <-p.Mailbox.Receive():
			if !ok {
				return
			}
			p.Receive(p.Ctx, msg)
		}
	}
}

func (p *PartitionActor) Receive(ctx context.Context, msg actor.Message) {
	switch m := msg.(type) {
	case *messages.AssignPartition:
		p.handleAssignPartition(m)
	case *messages.EdgeRangeTable:
		p.handleEdgeRangeTable(m)
	case *messages.VolumeCredit:
		p.handleVolumeCredit(m)
	case *messages.StartCounting:
		p.handleStartCounting()
	case *messages.DataMessage:
		p.handleDataMessage(m)
	case *messages.BarrierDone:
		p.handleBarrierDone()
	case *messages.Shutdown:
		p.shuttingDown.Store(true)
		p.Stop()
	default:
		log.Warn().Int("rank", p.rank).Str("type", msg.Type()).Msg("partition actor: unhandled message")
	}
}

// Partition exposes this rank's shard directly, for the single-process
// verify-hits cross-check (cmd/standalone) that needs every partition's
// adjacency in hand at once — never used by the wire protocol itself.
func (p *PartitionActor) Partition() *graph.Partition { return p.partition }

func (p *PartitionActor) handleAssignPartition(m *messages.AssignPartition) {
	topo, err := graph.NewTopology(m.Bases)
	if err != nil {
		log.Fatal().Err(err).Int("rank", p.rank).Msg("invalid topology from coordinator")
	}
	p.partition = graph.NewPartition(topo, m.Rank)
	p.counters = &engine.Counters{}

	edges, err := graphio.ReadEdgeList(m.DataPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", m.DataPath).Msg("failed to read edge list")
	}
	for _, e := range edges {
		if p.partition.Owner(e.U) == p.rank {
			p.partition.AddHalfEdge(p.partition.GlobalToLocal(e.U), e.V)
		}
		if p.partition.Owner(e.V) == p.rank {
			p.partition.AddHalfEdge(p.partition.GlobalToLocal(e.V), e.U)
		}
	}
	p.partition.Finalize()

	p.Send(p.coordinator, &messages.EdgeRangeContribution{
		Rank:   p.rank,
		Rows:   p.partition.EdgeRange,
		Sender: p.PID(),
	})
}

func (p *PartitionActor) handleEdgeRangeTable(m *messages.EdgeRangeTable) {
	if err := p.partition.MergeEdgeRange(m.Table); err != nil {
		log.Fatal().Err(err).Int("rank", p.rank).Msg("edge-range table merge failed")
	}

	dry := engine.NewEnumerator(p.partition, nil, p.counters, nil, nil)
	volume := dry.EstimateVolume()

	toPeer := make([]int64, p.partition.Topology.NumProcs())
	for peer, n := range volume {
		toPeer[peer] = n
	}
	p.Send(p.coordinator, &messages.VolumeReport{
		Rank:   p.rank,
		ToPeer: toPeer,
		Sender: p.PID(),
	})
}

func (p *PartitionActor) handleVolumeCredit(m *messages.VolumeCredit) {
	p.counters.InPending = m.InPending
	p.pendingSlotWidth = m.SlotWidth
}

func (p *PartitionActor) handleStartCounting() {
	numProcs := p.partition.Topology.NumProcs()
	n := p.pendingSlotWidth / 2
	if n < 1 {
		n = 1
	}
	k := bloomK(p.pendingSlotWidth, n)

	slots := make(map[int]*engine.Slot, numProcs-1)
	for peer := 0; peer < numProcs; peer++ {
		if peer == p.rank {
			continue
		}
		s, err := engine.NewSlotSized(peer, p.pendingSlotWidth, k, n)
		if err != nil {
			log.Fatal().Err(err).Int("rank", p.rank).Int("peer", peer).Msg("failed to size send slot")
		}
		slots[peer] = s
	}

	receiver, err := engine.NewReceiver(p.partition, p.counters, p.pendingSlotWidth, k)
	if err != nil {
		log.Fatal().Err(err).Int("rank", p.rank).Msg("failed to size receive filter")
	}

	sender := &partitionSender{p: p}
	probe := &mailboxProbe{queue: p.dataQueue}
	barrier := &partitionBarrierPort{p: p}

	resolver := engine.NewEnumerator(p.partition, slots, p.counters, sender, new(int64))
	resolver.ResolveLocal()

	p.driver = engine.NewDriver(p.partition, slots, p.counters, receiver, sender, probe, barrier)

	p.watch.Start()
	go p.driveToCompletion()
}

func (p *PartitionActor) driveToCompletion() {
	for !p.driver.Finished() {
		if p.shuttingDown.Load() {
			return
		}
		if err := p.driver.Step(); err != nil {
			log.Fatal().Err(err).Int("rank", p.rank).Msg("driver step failed")
		}
		time.Sleep(time.Microsecond)
	}
	log.Info().Int("rank", p.rank).Int64("triangles", p.driver.Triangles()).Dur("elapsed", p.watch.Elapsed()).Msg("partition quiesced")

	p.Send(p.coordinator, &messages.LocalCount{
		Rank:   p.rank,
		Count:  p.driver.Triangles(),
		Sender: p.PID(),
	})
}

func (p *PartitionActor) handleDataMessage(m *messages.DataMessage) {
	select {
	case p.dataQueue <- m.Bits:
	default:
		log.Warn().Int("rank", p.rank).Msg("partition actor: data queue full, dropping payload")
	}
}

func (p *PartitionActor) handleBarrierDone() {
	p.barrierDone.Store(true)
}

// bloomK derives the hash-round count a shared m/n pair implies, the same
// rounding bloom.New applies internally, so every rank's receive filter
// agrees with the sender even though the coordinator only negotiated m and
// n, not k directly.
func bloomK(m, n int) int {
	if n <= 0 {
		n = 1
	}
	k := int(math.Round((float64(m) / float64(n)) * math.Ln2))
	if k%2 != 0 {
		k++
	}
	if k == 0 {
		k = 2
	}
	return k
}

type partitionSender struct{ p *PartitionActor }

func (s *partitionSender) Send(peer int, bits []byte, k int) error {
	target, err := s.p.peerPID(peer)
	if err != nil {
		return err
	}
	cp := make([]byte, len(bits))
	copy(cp, bits)
	return s.p.Send(target, &messages.DataMessage{Sender: s.p.PID(), Bits: cp, K: k})
}

func (p *PartitionActor) peerPID(rank int) (actor.PID, error) {
	for _, pid := range p.System.GetActors(actor.PartitionType) {
		if pid.ActorID == partitionActorID(rank) {
			return pid, nil
		}
	}
	return actor.PID{}, fmt.Errorf("actors: no partition actor registered for rank %d", rank)
}

// partitionActorID zero-pads the rank so lexicographic sorting of actor
// IDs (how the provider orders GetActors results) agrees with numeric rank
// order past 9 partitions — StartSetup relies on that ordering to zip
// ranks to PIDs.
func partitionActorID(rank int) string {
	return fmt.Sprintf("partition-%04d", rank)
}

type mailboxProbe struct{ queue chan []byte }

func (m *mailboxProbe) TryReceive() ([]byte, bool) {
	select {
	case b := <-m.queue:
		return b, true
	default:
		return nil, false
	}
}

type partitionBarrierPort struct{ p *PartitionActor }

func (b *partitionBarrierPort) Announce(sent, received int64) error {
	return b.p.Send(b.p.coordinator, &messages.BarrierEnter{
		Rank:     b.p.rank,
		Sender:   b.p.PID(),
		Sent:     sent,
		Received: received,
	})
}

func (b *partitionBarrierPort) Done() bool { return b.p.barrierDone.Load() }
