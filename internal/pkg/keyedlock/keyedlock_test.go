package keyedlock_test

import (
	"sync"
	"testing"
	"time"

	"github.com/smartfixosapp/smartfixos/internal/pkg/keyedlock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyedLock_SerializesSameKey(t *testing.T) {
	t.Run("should run same-key holders one at a time", func(t *testing.T) {
		locks := keyedlock.New[string]()
		var active, maxActive int
		var mu sync.Mutex
		var wg sync.WaitGroup

		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unlock := locks.Lock("order-1")
				defer unlock()

				mu.Lock()
				active++
				if active > maxActive {
					maxActive = active
				}
				mu.Unlock()

				time.Sleep(time.Millisecond)

				mu.Lock()
				active--
				mu.Unlock()
			}()
		}

		wg.Wait()
		assert.Equal(t, 1, maxActive)
	})
}

func TestKeyedLock_DifferentKeysDoNotContend(t *testing.T) {
	t.Run("should let different keys proceed concurrently", func(t *testing.T) {
		locks := keyedlock.New[string]()

		unlockA := locks.Lock("order-a")
		defer unlockA()

		done := make(chan struct{})
		go func() {
			unlockB := locks.Lock("order-b")
			unlockB()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("lock for a different key blocked")
		}
	})
}

func TestKeyedLock_Reacquire(t *testing.T) {
	t.Run("should allow reacquiring a released key", func(t *testing.T) {
		locks := keyedlock.New[int]()

		unlock := locks.Lock(7)
		unlock()

		acquired := make(chan struct{})
		go func() {
			unlock := locks.Lock(7)
			unlock()
			close(acquired)
		}()

		select {
		case <-acquired:
		case <-time.After(time.Second):
			t.Fatal("released key could not be reacquired")
		}
	})

	t.Run("unlock should be safe to call exactly once per acquisition", func(t *testing.T) {
		locks := keyedlock.New[int]()
		var counter int
		var wg sync.WaitGroup

		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unlock := locks.Lock(1)
				counter++
				unlock()
			}()
		}

		wg.Wait()
		require.Equal(t, 10, counter)
	})
}
