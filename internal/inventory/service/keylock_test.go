package service

import (
	"sync"
	"testing"
)

func TestKeyLocks_SerializesSameKey(t *testing.T) {
	locks := newKeyLocks()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.lock("p1")
			counter++
			unlock()
		}()
	}
	wg.Wait()

	if counter != 100 {
		t.Fatalf("want 100, got %d", counter)
	}
	if locks.size() != 0 {
		t.Fatalf("want no retained locks, got %d", locks.size())
	}
}

func TestKeyLocks_DistinctKeysDoNotBlock(t *testing.T) {
	locks := newKeyLocks()
	unlockA := locks.lock("a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := locks.lock("b")
		unlock()
		close(done)
	}()
	<-done
}
