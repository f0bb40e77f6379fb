package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/distributed-tricount/pkg/actor"
	"github.com/distributed-tricount/pkg/actors"
	"github.com/distributed-tricount/pkg/cluster"
	"github.com/distributed-tricount/pkg/engine"
	"github.com/distributed-tricount/pkg/graph"
	"github.com/distributed-tricount/pkg/graphio"
)

const MachineID = "standalone"

func main() {
	var (
		dataPath   = flag.String("data", "", "edge-list CSV to count; generated if empty")
		nv         = flag.Int64("nv", 200, "vertex count for the generated graph")
		prob       = flag.Float64("prob", 0.05, "edge probability for the generated graph")
		seed       = flag.Int64("seed", 1, "RNG seed for the generated graph")
		partitions = flag.Int("partitions", 4, "number of partition actors")
		bufferHint = flag.Int("buffer-hint", 4096, "operator hint for per-peer slot width")
		falsePos   = flag.Float64("false-positive", 0.01, "target Bloom filter false-positive rate")
		verifyHits = flag.Bool("verify-hits", false, "after the run, recount triangles exactly over every partition and log whether the total matches")
		timeout    = flag.Duration("timeout", 2*time.Minute, "give up and exit if no count by this deadline")
	)
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	path := *dataPath
	if path == "" {
		generated, err := generateGraph(*nv, *prob, *seed)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to generate graph")
		}
		path = generated
		log.Info().Str("path", path).Int64("nv", *nv).Float64("prob", *prob).Msg("generated synthetic graph")
	}

	provider := cluster.NewSimpleProvider(MachineID, false)
	system := actor.NewActorSystem(MachineID, provider)

	coordinatorPID := actor.NewPID(MachineID, "coordinator")
	coordinator := actors.NewCoordinatorActor(coordinatorPID, system, actors.CoordinatorConfig{
		NumProcs:   *partitions,
		DataPath:   path,
		BufferHint: *bufferHint,
		FalsePos:   *falsePos,
		VerifyHits: *verifyHits,
	})
	if err := system.Register(coordinator); err != nil {
		log.Fatal().Err(err).Msg("failed to register coordinator")
	}
	provider.SetCoordinator(coordinatorPID)
	if err := provider.RegisterActor(actor.CoordinatorType, coordinatorPID); err != nil {
		log.Fatal().Err(err).Msg("failed to register coordinator in provider")
	}

	partitionActors := make([]*actors.PartitionActor, *partitions)
	var g errgroup.Group
	for rank := 0; rank < *partitions; rank++ {
		rank := rank
		g.Go(func() error {
			partitionPID := actor.NewPID(MachineID, partitionActorID(rank))
			partition := actors.NewPartitionActor(partitionPID, system, coordinatorPID, rank)
			if err := system.Register(partition); err != nil {
				return fmt.Errorf("rank %d: register: %w", rank, err)
			}
			if err := provider.RegisterActor(actor.PartitionType, partitionPID); err != nil {
				return fmt.Errorf("rank %d: register in provider: %w", rank, err)
			}
			partitionActors[rank] = partition
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("failed to bring up partition actors")
	}

	if err := system.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start actor system")
	}

	for _, p := range partitionActors {
		p.Start(system.Context())
	}
	coordinator.Start(system.Context())

	if err := coordinator.StartSetup(); err != nil {
		log.Fatal().Err(err).Msg("failed to start setup")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	total, err := coordinator.WaitFinalCount(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("timed out waiting for final count")
	}

	log.Info().Int64("triangles", total).Msg("standalone run complete")

	if *verifyHits {
		shards := make([]*graph.Partition, len(partitionActors))
		for i, p := range partitionActors {
			shards[i] = p.Partition()
		}
		exact := engine.ExactTriangleCount(shards)
		if exact != total {
			log.Warn().Int64("bloom_pipeline", total).Int64("exact", exact).Msg("verify-hits: mismatch between Bloom pipeline and exact recheck")
		} else {
			log.Info().Int64("exact", exact).Msg("verify-hits: exact recheck agrees with the Bloom pipeline")
		}
	}

	system.Shutdown()
}

// partitionActorID must match pkg/actors.partitionActorID's zero-padded
// format, since the coordinator zips ranks to PIDs by the provider's
// lexicographic ordering of actor IDs.
func partitionActorID(rank int) string {
	return fmt.Sprintf("partition-%04d", rank)
}

func generateGraph(nv int64, prob float64, seed int64) (string, error) {
	rng := rand.New(rand.NewSource(seed))
	edges := graphio.GenerateErdosRenyi(nv, prob, rng)
	path := "data/generated_edges.csv"
	if err := graphio.WriteEdgeList(path, edges); err != nil {
		return "", err
	}
	return path, nil
}
