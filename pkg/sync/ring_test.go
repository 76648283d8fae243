package sync

import (
	"crypto/ed25519"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRing_Consistency(t *testing.T) {
	r := newRing(64, 200)

	for i := 0; i < 256; i++ {
		key := generateKey(t)
		val := r.shard(key)
		assert.True(t, val >= 0 && val < 64)

		for j := 0; j < 16; j++ {
			assert.Equal(t, val, r.shard(key))
		}
	}
}

func TestRing_Distribution(t *testing.T) {
	shardCount := 5
	iterations := 100000
	marginOfError := 0.1
	expectedFrequency := iterations / shardCount

	r := newRing(shardCount, 200)

	hits := make(map[int]int)
	for i := 0; i < iterations; i++ {
		hits[r.shard(generateKey(t))]++
	}

	assert.EqualValues(t, shardCount, len(hits))
	for _, hitCount := range hits {
		assert.True(t, math.Abs(float64(hitCount-expectedFrequency)) <= marginOfError*float64(expectedFrequency))
	}
}

func TestRing_SingleShard(t *testing.T) {
	r := newRing(1, 1)
	for i := 0; i < 100; i++ {
		assert.Equal(t, 0, r.shard(generateKey(t)))
	}
}

func generateKey(t *testing.T) []byte {
	pub, _, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)
	return pub
}
