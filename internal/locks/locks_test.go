package locks

import (
	"context"
	"sync"
	"testing"
)

func TestLocalLocker_MutualExclusion(t *testing.T) {
	locker := NewLocalLocker()
	var counter int
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := locker.Acquire(context.Background(), "room-1")
			if err != nil {
				t.Errorf("acquire failed: %v", err)
				return
			}
			counter++
			release()
		}()
	}
	wg.Wait()
	if counter != 50 {
		t.Fatalf("counter = %d, want 50 (lost update under lock)", counter)
	}
}

func TestLocalLocker_IndependentKeys(t *testing.T) {
	locker := NewLocalLocker()
	releaseA, err := locker.Acquire(context.Background(), "room-a")
	if err != nil {
		t.Fatalf("acquire a: %v", err)
	}
	defer releaseA()

	// A held lock on another key must not block this one.
	done := make(chan struct{})
	go func() {
		releaseB, err := locker.Acquire(context.Background(), "room-b")
		if err == nil {
			releaseB()
		}
		close(done)
	}()
	<-done
}
