package cluster

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/distributed-tricount/pkg/actor"
)

// SimpleProvider is the cluster membership collaborator: it tracks which
// machine hosts which actors and, if a Transport is attached, ships
// messages to remote machines.
type SimpleProvider struct {
	machineID   string
	machines    map[string]string
	transport   *Transport
	coordinator actor.PID
	actorMap    map[actor.ActorType][]actor.PID
	byID        map[string]actor.PID
	mu          sync.RWMutex
}

func NewSimpleProvider(machineID string, useTransportLayer bool) *SimpleProvider {
	p := &SimpleProvider{
		machineID: machineID,
		machines:  make(map[string]string),
		actorMap:  make(map[actor.ActorType][]actor.PID),
		byID:      make(map[string]actor.PID),
	}

	if useTransportLayer {
		p.transport = NewTransport(machineID)
	}

	return p
}

func (p *SimpleProvider) MachineID() string {
	return p.machineID
}

func (p *SimpleProvider) Start(ctx context.Context) error {
	p.mu.Lock()
	if _, ok := p.machines[p.machineID]; !ok {
		p.machines[p.machineID] = "localhost"
	}
	p.mu.Unlock()

	if p.transport != nil {
		return p.transport.Start(ctx)
	}
	return nil
}

func (p *SimpleProvider) SetActorSystem(system *actor.ActorSystem) {
	if p.transport != nil {
		p.transport.SetActorSystem(system)
	}
}

func (p *SimpleProvider) SetCoordinator(coordinator actor.PID) {
	p.coordinator = coordinator
}

func (p *SimpleProvider) GetCoordinator() actor.PID {
	return p.coordinator
}

func (p *SimpleProvider) RegisterActor(actorType actor.ActorType, pid actor.PID) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.actorMap[actorType] = append(p.actorMap[actorType], pid)
	p.byID[pid.ActorID] = pid

	actors := p.actorMap[actorType]
	sort.Slice(actors, func(i, j int) bool {
		if actors[i].MachineID != actors[j].MachineID {
			return actors[i].MachineID < actors[j].MachineID
		}
		return actors[i].ActorID < actors[j].ActorID
	})

	return nil
}

func (p *SimpleProvider) GetActors(actorType actor.ActorType) []actor.PID {
	p.mu.RLock()
	defer p.mu.RUnlock()

	actors := make([]actor.PID, len(p.actorMap[actorType]))
	copy(actors, p.actorMap[actorType])
	return actors
}

func (p *SimpleProvider) FindActor(actorID string) (actor.PID, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	pid, ok := p.byID[actorID]
	if !ok {
		return actor.PID{}, fmt.Errorf("actor %s not known to provider", actorID)
	}
	return pid, nil
}

func (p *SimpleProvider) RegisterMachine(machineID, address string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.machines[machineID]; !exists {
		p.machines[machineID] = address
	}
}

func (p *SimpleProvider) Send(to actor.PID, msg actor.Message) error {
	if p.transport == nil {
		return fmt.Errorf("transport layer not enabled")
	}

	p.mu.RLock()
	addr := p.machines[to.MachineID]
	p.mu.RUnlock()

	return p.transport.Send(to, addr, msg)
}

func (p *SimpleProvider) Stop() error {
	if p.transport != nil {
		return p.transport.Stop()
	}
	return nil
}
