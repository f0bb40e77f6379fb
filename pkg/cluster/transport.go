package cluster

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/distributed-tricount/pkg/actor"
)

// Transport is the out-of-process networking collaborator: the
// point-to-point messaging layer between machines. Real deployments would
// swap this for a gRPC or raw-TCP implementation; this one logs what it
// would send.
type Transport struct {
	machineID string
	system    *actor.ActorSystem
}

func NewTransport(machineID string) *Transport {
	return &Transport{machineID: machineID}
}

func (t *Transport) SetActorSystem(system *actor.ActorSystem) {
	t.system = system
}

func (t *Transport) Start(ctx context.Context) error {
	log.Info().Str("machine", t.machineID).Msg("transport started")
	return nil
}

// Send ships msg to a remote machine at addr. Payloads are JSON-encoded for
// readability in this reference transport; a production transport would use
// a binary codec and ship the Bloom filter bytes straight across the wire.
func (t *Transport) Send(to actor.PID, addr string, msg actor.Message) error {
	if to.MachineID == t.machineID {
		return fmt.Errorf("transport should only handle remote messages")
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to serialize message: %w", err)
	}

	log.Debug().Str("to", to.String()).Str("addr", addr).Int("bytes", len(data)).Str("type", msg.Type()).Msg("transport would send")

	return nil
}

func (t *Transport) Stop() error {
	log.Info().Str("machine", t.machineID).Msg("transport stopped")
	return nil
}
