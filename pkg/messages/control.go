package messages

import "github.com/distributed-tricount/pkg/actor"

// LocalCount reports one rank's final wedge-closure tally once its barrier
// has completed. Each triangle closes one wedge at each of its three
// vertices, so the coordinator's reduction divides the fleet-wide sum by
// three.
type LocalCount struct {
	Rank   int       `json:"rank"`
	Count  int64     `json:"count"`
	Sender actor.PID `json:"sender"`
}

func (m *LocalCount) Type() string { return "LocalCount" }
func (m *LocalCount) Tag() int     { return TagControl }

// FinalCount is the coordinator's broadcast of the reduced, fleet-wide
// triangle count.
type FinalCount struct {
	Triangles int64 `json:"triangles"`
}

func (m *FinalCount) Type() string { return "FinalCount" }
func (m *FinalCount) Tag() int     { return TagControl }

// Shutdown tells an actor to stop its run loop and release its resources.
type Shutdown struct{}

func (m *Shutdown) Type() string { return "Shutdown" }
func (m *Shutdown) Tag() int     { return TagControl }
