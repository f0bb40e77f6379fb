// Package bloom implements the fixed-size, byte-per-bit Bloom filter the
// wedge-closing engine uses to encode candidate (u,v) pairs destined for a
// remote peer.
//
// Bits are stored one byte per bit ('0'/'1') rather than packed, trading
// 8x memory for byte-granular wire transport: a receiver can overlay a new
// payload directly onto its buffer with a plain copy, no bit-unpacking.
package bloom

import (
	"fmt"
	"math"

	"github.com/distributed-tricount/internal/bits"
)

const (
	setBit   byte = '1'
	clearBit byte = '0'
)

// Filter is a fixed-capacity Bloom filter over 64-bit (u,v) pairs.
type Filter struct {
	buf []byte // m bytes, one per bit
	m   int
	k   int
	n   int // design capacity, rounded to a power of two
}

// New builds a filter sized for n distinct (u,v) pairs at false-positive
// rate p. n is rounded up to the next power of two; m and k follow the
// standard Bloom sizing formulas, with k rounded up to an even number so
// hash128 can supply two indices per call.
func New(n int, p float64) (*Filter, error) {
	if n <= 0 {
		n = 1
	}
	if p <= 0 || p >= 1 {
		return nil, fmt.Errorf("bloom: false-positive rate %v out of (0,1)", p)
	}
	n = bits.NextPowerOfTwo(n)

	m := int(math.Ceil(-float64(n) * math.Log(p) / (math.Ln2 * math.Ln2)))
	if m < 8 {
		m = 8
	}

	k := int(math.Round((float64(m) / float64(n)) * math.Ln2))
	if k%2 != 0 {
		k++
	}
	if k == 0 {
		return nil, fmt.Errorf("bloom: computed k=0 for n=%d p=%v; invariant violation", n, p)
	}

	f := &Filter{buf: make([]byte, m), m: m, k: k, n: n}
	f.ClearBits()
	return f, nil
}

// NewSized builds a filter with an explicit bit width, used when the fleet
// has already agreed on a common m so every process's filter is the same
// byte length on the wire.
func NewSized(m, k int) (*Filter, error) {
	if k == 0 || k%2 != 0 {
		return nil, fmt.Errorf("bloom: k must be a positive even number, got %d", k)
	}
	if m < k {
		return nil, fmt.Errorf("bloom: m=%d too small for k=%d", m, k)
	}
	f := &Filter{buf: make([]byte, m), m: m, k: k}
	f.ClearBits()
	return f, nil
}

func (f *Filter) Bits() int { return f.m }
func (f *Filter) K() int    { return f.k }

// Insert sets the k bits derived from (u,v). insert(x); contains(x) is
// always true afterward.
func (f *Filter) Insert(u, v int64) {
	for _, idx := range f.indices(u, v) {
		f.buf[idx] = setBit
	}
}

// Contains reports whether all k bits derived from (u,v) are set. May
// return true for a pair never inserted (false positive), never false for
// one that was.
func (f *Filter) Contains(u, v int64) bool {
	for _, idx := range f.indices(u, v) {
		if f.buf[idx] != setBit {
			return false
		}
	}
	return true
}

func (f *Filter) indices(u, v int64) []int {
	idx := make([]int, 0, f.k)
	rounds := f.k / 2
	for r := 0; r < rounds; r++ {
		lo, hi := hash128(u, v, uint64(r))
		idx = append(idx, int(lo%uint64(f.m)), int(hi%uint64(f.m)))
	}
	return idx
}

// ClearBits resets every byte to '0' without deallocating the buffer, so a
// slot can be zeroed and reused across flushes instead of reallocated.
func (f *Filter) ClearBits() {
	for i := range f.buf {
		f.buf[i] = clearBit
	}
}

// Bytes exposes the raw buffer for copy-out. Callers must not retain it
// past the next ClearBits/Insert.
func (f *Filter) Bytes() []byte {
	return f.buf
}

// CopyInto copies this filter's bytes into dst's buffer, a cheap way to
// ship a read-only snapshot onto the wire without aliasing the live buffer
// a concurrent Insert might still be mutating the sender side.
func (f *Filter) CopyInto(dst []byte) int {
	return copy(dst, f.buf)
}

// LoadBytes overwrites the receive-side filter with payload bytes straight
// off the wire.
func (f *Filter) LoadBytes(payload []byte) error {
	if len(payload) != f.m {
		return fmt.Errorf("bloom: payload length %d does not match filter width %d", len(payload), f.m)
	}
	copy(f.buf, payload)
	return nil
}

// splitmix64 is the standard SplitMix64 finalizer: a cheap, well-diffused
// 64-bit mix.
func splitmix64(x uint64) uint64 {
	x += 0x9E3779B97F4A7C15
	z := x
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// hash128 produces a 128-bit hash of the pair (u,v) as two 64-bit lanes,
// called once per round to accumulate k indices, two per call.
func hash128(u, v int64, round uint64) (lo, hi uint64) {
	seed := uint64(u) ^ (uint64(v) * 0x9E3779B97F4A7C15) ^ (round * 0xC2B2AE3D27D4EB4F)
	lo = splitmix64(seed)
	hi = splitmix64(lo ^ 0xD6E8FEB86659FD93)
	return lo, hi
}
