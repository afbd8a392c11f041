package crypto

import (
	"hash"
	"sync"

	"golang.org/x/crypto/sha3"
)

var keccak256Pool = sync.Pool{New: func() interface{} {
	return sha3.NewLegacyKeccak256()
}}

func Hash(data []byte) [32]byte {
	h, ok := keccak256Pool.Get().(hash.Hash)
	if !ok {
		h = sha3.NewLegacyKeccak256()
	}
	defer keccak256Pool.Put(h)
	h.Reset()

	var b [32]byte

	h.Write(data)
	h.Sum(b[:0])

	return b
}

// HashConcat hashes the concatenation of parts without an intermediate copy.
func HashConcat(parts ...[]byte) [32]byte {
	h, ok := keccak256Pool.Get().(hash.Hash)
	if !ok {
		h = sha3.NewLegacyKeccak256()
	}
	defer keccak256Pool.Put(h)
	h.Reset()

	var b [32]byte
	for _, p := range parts {
		h.Write(p)
	}
	h.Sum(b[:0])

	return b
}
