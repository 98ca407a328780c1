package claim

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDonationLocksSerializeSameID(t *testing.T) {
	locks := newDonationLocks()

	const goroutines = 16
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			locks.lock("d1")
			counter++
			locks.unlock("d1")
		}()
	}
	wg.Wait()

	assert.Equal(t, goroutines, counter)
}

func TestDonationLocksEntriesDroppedWhenIdle(t *testing.T) {
	locks := newDonationLocks()

	locks.lock("d1")
	locks.lock("d2")
	locks.unlock("d2")
	locks.unlock("d1")

	locks.mu.Lock()
	defer locks.mu.Unlock()
	assert.Empty(t, locks.locks)
}

func TestDonationLocksIndependentIDs(t *testing.T) {
	locks := newDonationLocks()

	locks.lock("d1")
	// A different donation must not block behind d1.
	done := make(chan struct{})
	go func() {
		locks.lock("d2")
		locks.unlock("d2")
		close(done)
	}()
	<-done
	locks.unlock("d1")
}
