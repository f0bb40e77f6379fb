package engine

import "fmt"

// Sender ships one slot's filter bytes to its destination peer. The
// concrete implementation wraps an actor mailbox send.
type Sender interface {
	Send(peer int, bits []byte, k int) error
}

// flush issues the slot's send if it holds anything (nbsend is a no-op on
// an empty slot) and immediately recycles its buffer. The underlying
// actor-mailbox transport completes a send synchronously from the
// caller's point of view — it either copies the payload into the peer's
// mailbox or returns an error — so there is no separate asynchronous
// completion to poll for, unlike a real MPI isend/testsome pair. That
// only recycles the buffer, though: the peer stays locked to its
// bookmarked edge (Slot.Status, left untouched by Reset) until the
// enumerator itself resumes and drains that edge, the synchronous stand-in
// for waiting on the send to complete before unlocking the peer. sent is
// incremented on success, the running tally the barrier vote compares
// against the peer's corresponding received tally.
func flush(s *Slot, sender Sender, sent *int64) error {
	if s.Fill == 0 {
		return nil
	}
	if err := sender.Send(s.Peer, s.Filter.Bytes(), s.Filter.K()); err != nil {
		return fmt.Errorf("engine: flush slot for peer %d: %w", s.Peer, err)
	}
	s.Reset()
	*sent++
	return nil
}
