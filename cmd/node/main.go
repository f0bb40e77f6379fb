package main

import (
	"flag"
	"fmt"
	"io/ioutil"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/distributed-tricount/internal/config"
	"github.com/distributed-tricount/pkg/actor"
	"github.com/distributed-tricount/pkg/actors"
	"github.com/distributed-tricount/pkg/cluster"
)

const (
	DefaultShutdownGrace = 2 * time.Second
	DefaultTimeout       = 5 * time.Minute
	ConfigsDir           = "configs"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file (YAML)")
	flag.Parse()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if *configPath == "" {
		log.Fatal().Msg("no configuration file provided")
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	log.Info().Str("machine", cfg.MachineID).Int("port", cfg.Port).Msg("starting node")

	provider := cluster.NewSimpleProvider(cfg.MachineID, true)
	for _, peer := range cfg.Network.Peers {
		provider.RegisterMachine(peer.ID, peer.Address)
		log.Info().Str("peer", peer.ID).Str("addr", peer.Address).Msg("registered peer")
	}

	if err := registerPeerActors(provider, cfg.MachineID); err != nil {
		log.Warn().Err(err).Msg("failed to register peer actors")
	}

	system := actor.NewActorSystem(cfg.MachineID, provider)
	provider.SetActorSystem(system)

	coordinatorID := cfg.MachineID
	if !cfg.IsCoordinator {
		coordinatorID = cfg.Coordinator
	}
	coordinatorPID := actor.NewPID(coordinatorID, "coordinator")
	provider.SetCoordinator(coordinatorPID)
	if err := provider.RegisterActor(actor.CoordinatorType, coordinatorPID); err != nil {
		log.Fatal().Err(err).Msg("failed to register coordinator in provider")
	}

	var coordinator *actors.CoordinatorActor
	if cfg.IsCoordinator {
		coordinator = actors.NewCoordinatorActor(coordinatorPID, system, actors.CoordinatorConfig{
			NumProcs:   cfg.Partitions,
			DataPath:   cfg.Algorithm.DataPath,
			BufferHint: cfg.Algorithm.BufferHint,
			FalsePos:   cfg.Algorithm.FalsePositive,
			VerifyHits: cfg.Algorithm.VerifyHits,
		})
		if err := system.Register(coordinator); err != nil {
			log.Fatal().Err(err).Msg("failed to register coordinator actor")
		}
		log.Info().Msg("registered coordinator actor")
	}

	partitions := make([]*actors.PartitionActor, cfg.Partitions)
	var g errgroup.Group
	for rank := 0; rank < cfg.Partitions; rank++ {
		rank := rank
		g.Go(func() error {
			partitionPID := actor.NewPID(cfg.MachineID, partitionActorID(rank))
			partition := actors.NewPartitionActor(partitionPID, system, coordinatorPID, rank)
			if err := system.Register(partition); err != nil {
				return fmt.Errorf("rank %d: register: %w", rank, err)
			}
			if err := provider.RegisterActor(actor.PartitionType, partitionPID); err != nil {
				return fmt.Errorf("rank %d: register in provider: %w", rank, err)
			}
			partitions[rank] = partition
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("failed to bring up partition actors")
	}

	if err := system.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start actor system")
	}

	for _, p := range partitions {
		p.Start(system.Context())
	}
	if coordinator != nil {
		coordinator.Start(system.Context())
		if err := coordinator.StartSetup(); err != nil {
			log.Fatal().Err(err).Msg("failed to start setup")
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		log.Info().Msg("received shutdown signal")
	case <-time.After(DefaultTimeout):
		log.Warn().Msg("node timeout reached")
	}

	log.Info().Msg("shutting down")
	system.Shutdown()
	time.Sleep(DefaultShutdownGrace)
	log.Info().Msg("shutdown complete")
}

// partitionActorID must match pkg/actors.partitionActorID's zero-padded
// format, since the coordinator zips ranks to PIDs by the provider's
// lexicographic ordering of actor IDs.
func partitionActorID(rank int) string {
	return fmt.Sprintf("partition-%04d", rank)
}

// registerPeerActors makes every other machine's partition actors known to
// this provider by reading their config files off disk, the same way the
// cluster bootstraps membership without a discovery service.
func registerPeerActors(provider *cluster.SimpleProvider, selfMachineID string) error {
	files, err := ioutil.ReadDir(ConfigsDir)
	if err != nil {
		return fmt.Errorf("failed to read configs directory: %w", err)
	}

	for _, file := range files {
		if !strings.HasSuffix(file.Name(), ".yaml") && !strings.HasSuffix(file.Name(), ".yml") {
			continue
		}

		peerCfg, err := config.LoadConfig(filepath.Join(ConfigsDir, file.Name()))
		if err != nil {
			return fmt.Errorf("failed to load peer config %s: %w", file.Name(), err)
		}
		if peerCfg.MachineID == selfMachineID {
			continue
		}

		log.Info().Str("machine", peerCfg.MachineID).Msg("registering peer node's actors")
		for rank := 0; rank < peerCfg.Partitions; rank++ {
			partitionPID := actor.NewPID(peerCfg.MachineID, partitionActorID(rank))
			if err := provider.RegisterActor(actor.PartitionType, partitionPID); err != nil {
				return fmt.Errorf("failed to register peer partition %s: %w", partitionPID, err)
			}
		}
		if peerCfg.IsCoordinator {
			coordPID := actor.NewPID(peerCfg.MachineID, "coordinator")
			if err := provider.RegisterActor(actor.CoordinatorType, coordPID); err != nil {
				return fmt.Errorf("failed to register peer coordinator %s: %w", coordPID, err)
			}
		}
	}

	return nil
}
