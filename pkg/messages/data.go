package messages

import "github.com/distributed-tricount/pkg/actor"

// DataMessage carries one flushed slot's Bloom filter payload from sender
// to receiver. Bits are the filter's raw byte buffer, copied so the
// sender's live slot can be cleared and reused as soon as the send
// completes.
type DataMessage struct {
	Sender actor.PID `json:"sender"`
	Bits   []byte    `json:"bits"`
	K      int       `json:"k"`
}

func (m *DataMessage) Type() string { return "DataMessage" }
func (m *DataMessage) Tag() int     { return TagData }
