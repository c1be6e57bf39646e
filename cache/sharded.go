package cache

import (
	"context"

	"github.com/cespare/xxhash/v2"
)

// Sharded spreads entries over several Maps to reduce lock contention
// between concurrent callers. The shard of a key is chosen by the xxhash of
// its Encode form; keys that cannot be encoded all live in the first shard.
// Within a shard keys are compared with ==, so pointer keys keep their
// identity.
type Sharded struct {
	shards []*Map
}

// NewSharded creates a Sharded store with n shards.
func NewSharded(n int) (*Sharded, error) {
	if n <= 0 {
		return nil, ErrInvalidCapacity
	}
	s := &Sharded{shards: make([]*Map, n)}
	for i := range s.shards {
		s.shards[i] = NewMap()
	}
	return s, nil
}

func (s *Sharded) shard(key any) *Map {
	if len(s.shards) == 1 {
		return s.shards[0]
	}
	b, err := Encode(key)
	if err != nil {
		return s.shards[0]
	}
	return s.shards[xxhash.Sum64(b)%uint64(len(s.shards))]
}

// Get retrieves a value. Returns (nil, false) on miss.
func (s *Sharded) Get(ctx context.Context, key any) (any, bool) {
	return s.shard(key).Get(ctx, key)
}

// Set stores a value in the key's shard.
func (s *Sharded) Set(ctx context.Context, key any, value any) error {
	return s.shard(key).Set(ctx, key, value)
}

// Delete removes a value. Idempotent - no error on miss.
func (s *Sharded) Delete(ctx context.Context, key any) error {
	return s.shard(key).Delete(ctx, key)
}

// Len returns the number of entries across all shards.
func (s *Sharded) Len() int {
	n := 0
	for _, m := range s.shards {
		n += m.Len()
	}
	return n
}

// Ensure Sharded implements Store
var _ Store = (*Sharded)(nil)
