package actor

import (
	"context"
	"fmt"
	"sync"
)

// Provider is the cluster membership + remote-delivery collaborator. A
// Provider knows the full fleet's actor addresses and can ship a message to
// a remote machine.
type Provider interface {
	GetActors(ActorType) []PID
	FindActor(actorID string) (PID, error)
	Send(to PID, msg Message) error
	Start(ctx context.Context) error
	Stop() error
}

type ActorSystem struct {
	machineId string
	actors    map[string]Actor
	mu        sync.RWMutex
	provider  Provider
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewActorSystem(machineId string, provider Provider) *ActorSystem {
	ctx, cancel := context.WithCancel(context.Background())
	return &ActorSystem{
		machineId: machineId,
		actors:    make(map[string]Actor),
		provider:  provider,
		ctx:       ctx,
		cancel:    cancel,
	}
}

func (s *ActorSystem) MachineID() string {
	return s.machineId
}

func (s *ActorSystem) Context() context.Context {
	return s.ctx
}

func (s *ActorSystem) Start() error {
	if s.provider != nil {
		return s.provider.Start(s.ctx)
	}
	return nil
}

func (s *ActorSystem) Register(a Actor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pid := a.PID()
	if _, exists := s.actors[pid.ActorID]; exists {
		return fmt.Errorf("actor %s already registered", pid.ActorID)
	}

	s.actors[pid.ActorID] = a
	return nil
}

func (s *ActorSystem) Unregister(actorID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.actors, actorID)
}

// Send is the non-blocking send primitive: it never blocks on delivery,
// returning an error on a full or closed mailbox (ErrMailboxFull,
// ErrMailboxClosed), an unknown local actor, or a failed remote delivery.
func (s *ActorSystem) Send(to PID, msg Message) error {
	if to.IsLocal(s.machineId) {
		return s.localDeliver(to, msg)
	}
	return s.remoteDeliver(to, msg)
}

func (s *ActorSystem) localDeliver(to PID, msg Message) error {
	s.mu.RLock()
	a, exists := s.actors[to.ActorID]
	s.mu.RUnlock()

	if !exists {
		return ErrActorNotFound
	}

	mailbox := a.GetMailbox()
	if mailbox != nil {
		return mailbox.Send(msg)
	}

	go a.Receive(s.ctx, msg)
	return nil
}

func (s *ActorSystem) remoteDeliver(to PID, msg Message) error {
	if s.provider == nil {
		return fmt.Errorf("no cluster provider configured for remote delivery")
	}
	return s.provider.Send(to, msg)
}

func (s *ActorSystem) GetActor(actorID string) (Actor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, exists := s.actors[actorID]
	return a, exists
}

// Broadcast sends msg to every local-or-remote PID the provider reports for
// actorType, via the ordinary non-blocking Send path.
func (s *ActorSystem) Broadcast(actorType ActorType, msg Message) {
	for _, pid := range s.GetActors(actorType) {
		if err := s.Send(pid, msg); err != nil {
			// Best-effort: a single unreachable peer should not abort the
			// whole broadcast. Send errors are dropped here; no delivery
			// confirmation reaches the caller.
			continue
		}
	}
}

func (s *ActorSystem) Shutdown() {
	s.cancel()

	s.mu.RLock()
	actors := make([]Actor, 0, len(s.actors))
	for _, a := range s.actors {
		actors = append(actors, a)
	}
	s.mu.RUnlock()

	for _, a := range actors {
		a.Stop()
	}

	if s.provider != nil {
		s.provider.Stop()
	}
}

func (s *ActorSystem) GetActors(actorType ActorType) []PID {
	if s.provider != nil {
		return s.provider.GetActors(actorType)
	}
	return []PID{}
}

func (s *ActorSystem) FindActor(actorID string) (PID, error) {
	if s.provider != nil {
		return s.provider.FindActor(actorID)
	}
	return PID{}, fmt.Errorf("no cluster provider available")
}
