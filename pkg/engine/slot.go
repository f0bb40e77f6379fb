// Package engine is the counting driver: the wedge enumerator, per-peer
// send buffers, the receive/probe loop, and the non-blocking termination
// detector that together turn a graph.Partition into a local triangle
// count.
package engine

import (
	"github.com/distributed-tricount/pkg/bloom"
)

// SlotStatus tracks whether a peer's send buffer is free for any source
// edge (SlotIdle) or locked to its bookmarked edge after filling mid-walk
// and being flushed (SlotInFlight); the lock lasts until that edge's inner
// walk completes.
type SlotStatus int

const (
	SlotIdle SlotStatus = iota
	SlotInFlight
)

// Bookmark is the flat edge-array position at which enumeration paused
// against a given peer's slot: M is the source half-edge, K is the
// neighbor position where the inner search stopped. HasK distinguishes
// "pick up partway through this edge's inner walk" from "start a fresh
// inner walk at M+1".
type Bookmark struct {
	M    int
	K    int
	HasK bool
}

// Slot is one peer's send buffer: a Bloom filter plus the bookkeeping the
// enumerator needs to pause and resume filling it across driver ticks.
type Slot struct {
	Peer      int // destination rank
	Filter    *bloom.Filter
	Fill      int // wedge-endpoints inserted since the last flush
	FillLimit int // Fill reaches this exactly when the filter holds its design n pairs
	Status    SlotStatus
	Bookmark  Bookmark
}

// NewSlot allocates an idle slot with an n-pair-capacity filter at false
// positive rate p.
func NewSlot(peer int, n int, p float64) (*Slot, error) {
	f, err := bloom.New(n, p)
	if err != nil {
		return nil, err
	}
	return &Slot{Peer: peer, Filter: f, FillLimit: 2 * n}, nil
}

// NewSlotSized allocates an idle slot with an explicit fleet-wide common
// bit width and k, used once the setup-time buffer-size exchange has
// settled on a shared m.
func NewSlotSized(peer int, m, k, n int) (*Slot, error) {
	f, err := bloom.NewSized(m, k)
	if err != nil {
		return nil, err
	}
	return &Slot{Peer: peer, Filter: f, FillLimit: 2 * n}, nil
}

// Full reports whether the slot has accumulated its design capacity of
// pairs and should pause further inserts until flushed.
func (s *Slot) Full() bool { return s.Fill >= s.FillLimit }

// Insert records one candidate pair in the filter and advances Fill by two
// wedge-endpoints (the fill counter's unit of account).
func (s *Slot) Insert(a, b int64) {
	s.Filter.Insert(a, b)
	s.Fill += 2
}

// Reset clears the filter and fill counter once a send completes, so the
// slot can be refilled. Bookmark and Status are deliberately left
// untouched: the enumerator owns them and needs the lock to survive the
// underlying buffer being recycled, so a same-peer edge encountered later
// in the same pass can't slip through and clobber the bookmark before the
// one it locked for has been resumed.
func (s *Slot) Reset() {
	s.Filter.ClearBits()
	s.Fill = 0
}
