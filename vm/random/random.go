// Package random is the deterministic draw source of the lottery: a byte cursor over a 32-byte seed
// that rehashes the seed whenever it runs out of unread bytes.
package random

import (
	"encoding/binary"

	"github.com/multiversx/mx-launchpad-sc-sub000/crypto"
)

const (
	SeedLength   = 32
	uint32Length = 4
)

// Hasher charges and computes the reseeding hash; nil falls back to crypto.Hash.
type Hasher func(data []byte) [32]byte

// Random is fully described by its exported fields, which is what a checkpoint stores.
type Random struct {
	Seed  [SeedLength]byte
	Index uint64

	hasher Hasher
}

// New starts a draw source from a beacon value. A 32-byte value is used as is, anything else is hashed.
func New(beacon []byte, hasher Hasher) *Random {
	r := &Random{hasher: hasher}
	if len(beacon) == SeedLength {
		copy(r.Seed[:], beacon)
	} else {
		r.Seed = r.hash(beacon)
	}
	return r
}

// WithHasher attaches a hasher to a source restored from a checkpoint.
func (r *Random) WithHasher(hasher Hasher) *Random {
	r.hasher = hasher
	return r
}

func (r *Random) hash(data []byte) [32]byte {
	if r.hasher != nil {
		return r.hasher(data)
	}
	return crypto.Hash(data)
}

func (r *Random) NextUint32() uint32 {
	if r.Index+uint32Length > SeedLength {
		r.Seed = r.hash(r.Seed[:])
		r.Index = 0
	}
	v := binary.BigEndian.Uint32(r.Seed[r.Index : r.Index+uint32Length])
	r.Index += uint32Length
	return v
}

// NextInRange draws from [min, max). It returns min without consuming the seed when the range is empty.
func (r *Random) NextInRange(min, max uint64) uint64 {
	if min >= max {
		return min
	}
	return min + uint64(r.NextUint32())%(max-min)
}
