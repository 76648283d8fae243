package sync

import (
	base "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStripedLock_HappyPath(t *testing.T) {
	workerCount := 64
	operationCount := 1000

	l := NewStripedLock(4)

	var workerWg base.WaitGroup
	startChan := make(chan struct{})
	data := make([]int, workerCount)

	for i := 0; i < workerCount; i++ {
		workerWg.Add(1)

		key := generateKey(t)
		go func(workerID int) {
			defer workerWg.Done()

			<-startChan

			for j := 0; j < operationCount; j++ {
				mu := l.Get(key)
				mu.Lock()
				data[workerID]++
				mu.Unlock()
			}
		}(i)
	}

	close(startChan)
	workerWg.Wait()

	for _, val := range data {
		assert.EqualValues(t, operationCount, val)
	}
}

func TestStripedLock_LockAll(t *testing.T) {
	l := NewStripedLock(8)

	keys := make([][]byte, 16)
	for i := range keys {
		keys[i] = generateKey(t)
	}

	// Overlapping key sets taken in different orders must never deadlock, and
	// the counter guarded by the write keys must see every increment.
	var counter int
	var wg base.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			writes := [][]byte{keys[i%len(keys)], keys[0]}
			reads := [][]byte{keys[(i+3)%len(keys)], keys[0]}
			if i%2 == 0 {
				writes[0], writes[1] = writes[1], writes[0]
			}

			for j := 0; j < 100; j++ {
				unlock := l.LockAll(writes, reads)
				counter++
				unlock()
			}
		}(i)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("LockAll deadlocked")
	}

	assert.Equal(t, 32*100, counter)
}

func TestStripedLock_LockAllSharedStripe(t *testing.T) {
	l := NewStripedLock(1)

	// Both keys map to the single stripe, which must be taken once in write
	// mode rather than twice.
	unlock := l.LockAll([][]byte{generateKey(t)}, [][]byte{generateKey(t)})

	acquired := make(chan struct{})
	go func() {
		mu := l.Get(generateKey(t))
		mu.RLock()
		mu.RUnlock()
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("stripe was not held exclusively")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()
	<-acquired
}
