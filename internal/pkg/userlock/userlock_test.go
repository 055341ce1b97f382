package userlock

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	km := New()
	const workers = 16
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := km.Lock("user-a")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()
	require.Equal(t, workers, counter)
}

func TestKeyedMutexReleasesIdleEntries(t *testing.T) {
	km := New()
	unlock := km.Lock("user-a")
	unlock()
	km.mu.Lock()
	defer km.mu.Unlock()
	require.Empty(t, km.locks)
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	km := New()
	unlockA := km.Lock("user-a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB := km.Lock("user-b")
		unlockB()
		close(done)
	}()
	<-done
}
