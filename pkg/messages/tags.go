package messages

import "github.com/distributed-tricount/pkg/actor"

// Message is an alias for actor.Message, so package messages can refer to
// the shared actor message interface without an import cycle concern.
type Message = actor.Message

// Wire tags group messages by the accounting rules the engine applies to
// them. Setup messages are never counted against out_pending/in_pending
// (VolumeCredit only carries the initial in_pending credit); Data
// messages are the only ones that move candidate pairs; Barrier messages
// drive the non-blocking termination vote.
const (
	TagSetup   = 1
	TagData    = 2
	TagBarrier = 3
	TagControl = 4
)
