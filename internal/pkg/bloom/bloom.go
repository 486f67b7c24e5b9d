// Package bloom implements a fixed-size Bloom filter over strings, safe for
// concurrent use. It answers "definitely absent" or "possibly present" and
// never forgets: there is no removal.
package bloom

import (
	"math"
	"sync/atomic"

	"github.com/cespare/xxhash/v2"
)

// Filter is an m-bit Bloom filter probed by k hash positions per key.
// Bits live in atomic words so Add and MightContain need no lock.
type Filter struct {
	words []atomic.Uint64
	m     uint64
	k     uint64
}

// New returns a filter with m bits and k hash functions. Values below 1 are
// raised to 1.
func New(m, k int) *Filter {
	if m < 1 {
		m = 1
	}
	if k < 1 {
		k = 1
	}
	return &Filter{
		words: make([]atomic.Uint64, (m+63)/64),
		m:     uint64(m),
		k:     uint64(k),
	}
}

// Add sets the key's k bits. Idempotent.
func (f *Filter) Add(key string) {
	h1, h2 := hashes(key)
	for i := uint64(0); i < f.k; i++ {
		pos := (h1 + i*h2) % f.m
		f.words[pos>>6].Or(1 << (pos & 63))
	}
}

// MightContain reports whether all of the key's bits are set. A false result
// is definitive; a true result may be a collision.
func (f *Filter) MightContain(key string) bool {
	h1, h2 := hashes(key)
	for i := uint64(0); i < f.k; i++ {
		pos := (h1 + i*h2) % f.m
		if f.words[pos>>6].Load()&(1<<(pos&63)) == 0 {
			return false
		}
	}
	return true
}

// EstimatedFalsePositiveRate is the theoretical rate after n distinct adds:
// (1 - e^(-kn/m))^k.
func (f *Filter) EstimatedFalsePositiveRate(n int) float64 {
	k := float64(f.k)
	return math.Pow(1-math.Exp(-k*float64(n)/float64(f.m)), k)
}

// hashes splits one 64-bit digest into the two seeds of Kirsch-Mitzenmacher
// double hashing. h2 is forced odd so successive probes differ.
func hashes(key string) (uint64, uint64) {
	sum := xxhash.Sum64String(key)
	return sum & 0xffffffff, (sum >> 32) | 1
}
