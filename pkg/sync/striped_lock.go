package sync

import (
	"sort"
	base "sync"
)

const (
	hashEntriesPerLock = 200
)

// StripedLock is a partitioned locking mechanism that consistently maps a key
// space to a set of locks. This provides concurrent data access while also
// limiting the total memory footprint.
type StripedLock struct {
	locks    []base.RWMutex
	hashRing *ring
}

// NewStripedLock returns a new StripedLock with a static number of stripes.
func NewStripedLock(stripes uint) *StripedLock {
	if stripes == 0 {
		stripes = 1
	}

	return &StripedLock{
		locks:    make([]base.RWMutex, stripes),
		hashRing: newRing(int(stripes), hashEntriesPerLock),
	}
}

// Get gets the lock for a key
func (l *StripedLock) Get(key []byte) *base.RWMutex {
	return &l.locks[l.hashRing.shard(key)]
}

// LockAll acquires the stripes covering writeKeys exclusively and the stripes
// covering readKeys shared, and returns a function releasing all of them.
//
// Several keys may share a stripe, so each stripe is taken once, in write mode
// if any write key maps to it. Stripes are acquired in ascending order, which
// keeps concurrent LockAll calls with overlapping keys deadlock free.
func (l *StripedLock) LockAll(writeKeys, readKeys [][]byte) (unlock func()) {
	exclusive := make(map[int]bool)
	for _, key := range writeKeys {
		exclusive[l.hashRing.shard(key)] = true
	}
	for _, key := range readKeys {
		shard := l.hashRing.shard(key)
		if _, ok := exclusive[shard]; !ok {
			exclusive[shard] = false
		}
	}

	shards := make([]int, 0, len(exclusive))
	for shard := range exclusive {
		shards = append(shards, shard)
	}
	sort.Ints(shards)

	for _, shard := range shards {
		if exclusive[shard] {
			l.locks[shard].Lock()
		} else {
			l.locks[shard].RLock()
		}
	}

	return func() {
		for i := len(shards) - 1; i >= 0; i-- {
			shard := shards[i]
			if exclusive[shard] {
				l.locks[shard].Unlock()
			} else {
				l.locks[shard].RUnlock()
			}
		}
	}
}
