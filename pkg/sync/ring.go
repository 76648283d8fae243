package sync

import (
	"encoding/binary"

	"github.com/emirpasic/gods/maps/treemap"
	"github.com/emirpasic/gods/utils"
	"github.com/spaolacci/murmur3"
)

// ring is a consistent hash ring mapping arbitrary keys onto a fixed set of
// shard indexes.
type ring struct {
	hashRing *treemap.Map

	// minShard caches the shard of the lowest ring entry, used when a hash
	// wraps past the highest entry. treemap.Map.Min() is O(log n).
	minShard int
}

// newRing returns a ring over shards [0, shards), each placed
// replicationFactor times.
func newRing(shards int, replicationFactor uint) *ring {
	hashRing := treemap.NewWith(utils.Int64Comparator)
	for shard := 0; shard < shards; shard++ {
		seed := make([]byte, 8)
		binary.LittleEndian.PutUint64(seed, uint64(shard))
		shardHash, _ := murmur3.Sum128(seed)

		shardHashBytes := make([]byte, 8)
		binary.LittleEndian.PutUint64(shardHashBytes, shardHash)
		for i := 0; i < int(replicationFactor); i++ {
			hasher := murmur3.New128()
			hasher.Write(shardHashBytes)
			indexBytes := make([]byte, 4)
			binary.LittleEndian.PutUint32(indexBytes, uint32(i))
			hasher.Write(indexBytes)
			hash, _ := hasher.Sum128()
			hashRing.Put(int64(hash), shard)
		}
	}

	r := &ring{hashRing: hashRing}
	if _, minShard := hashRing.Min(); minShard != nil {
		r.minShard = minShard.(int)
	}
	return r
}

// shard consistently hashes key onto a shard index
func (r *ring) shard(key []byte) int {
	hasher := murmur3.New128()
	hasher.Write(key)
	raw, _ := hasher.Sum128()

	_, shard := r.hashRing.Ceiling(int64(raw))
	if shard != nil {
		return shard.(int)
	}
	return r.minShard
}
