package application

import (
	"sync"
	"testing"
)

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	t.Parallel()

	locks := newKeyedMutex()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock("professional:p1")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	if counter != 100 {
		t.Fatalf("expected 100 serialized increments, got %d", counter)
	}
}

func TestKeyedMutex_IndependentKeysDoNotBlock(t *testing.T) {
	t.Parallel()

	locks := newKeyedMutex()

	unlockA := locks.Lock("professional:a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB := locks.Lock("professional:b")
		unlockB()
		close(done)
	}()

	<-done
}
