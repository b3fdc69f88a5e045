package placement

import (
	"unsafe"

	"github.com/cespare/xxhash"
	"github.com/pkg/errors"
	"github.com/spaolacci/murmur3"

	"github.com/outofforest/photon"
	"github.com/outofforest/phdb/types"
)

// Algorithm selects hash function used to derive keys.
type Algorithm byte

// Supported algorithms.
const (
	XXHash Algorithm = iota
	Murmur3
)

var algorithmNames = map[Algorithm]string{
	XXHash:  "xxhash",
	Murmur3: "murmur3",
}

func (a Algorithm) String() string {
	if name, exists := algorithmNames[a]; exists {
		return name
	}
	return "unknown"
}

// ParseAlgorithm returns the algorithm of the given name.
func ParseAlgorithm(name string) (Algorithm, error) {
	for a, n := range algorithmNames {
		if n == name {
			return a, nil
		}
	}
	return 0, errors.Errorf("unknown hash algorithm %q", name)
}

// NewHasher creates hasher converting keys of type K into table keys.
// Seed is mixed into the hashed bytes, zero seed hashes key bytes only.
func NewHasher[K comparable](algorithm Algorithm, seed uint64) (Hasher[K], error) {
	var sum func([]byte) uint64
	switch algorithm {
	case XXHash:
		sum = xxhash.Sum64
	case Murmur3:
		sum = murmur3.Sum64
	default:
		return Hasher[K]{}, errors.Errorf("unknown hash algorithm %d", algorithm)
	}

	var k K
	var bytes []byte
	var data []byte
	if seed > 0 {
		bytes = make([]byte, types.UInt64Length+unsafe.Sizeof(k))
		copy(bytes, photon.NewFromValue(&seed).B)
		data = bytes[types.UInt64Length:]
	}

	return Hasher[K]{
		sum:   sum,
		bytes: bytes,
		data:  data,
	}, nil
}

// Hasher maps arbitrary fixed-size keys into the 32-bit key space.
// K must not contain pointers, its memory is hashed directly.
type Hasher[K comparable] struct {
	sum   func([]byte) uint64
	bytes []byte
	data  []byte
}

// Key returns table key for the value.
func (h Hasher[K]) Key(key K) types.Key {
	var hash uint64
	if h.bytes == nil {
		hash = h.sum(photon.NewFromValue[K](&key).B)
	} else {
		copy(h.data, photon.NewFromValue[K](&key).B)
		hash = h.sum(h.bytes)
	}
	// Upper half is folded in so both halves of 64-bit hash influence page and slot selection.
	return types.Key(hash ^ hash>>32)
}
