package strand

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestDoRunsInOrder(t *testing.T) {
	s := New(16)
	defer s.Close()

	var got []int
	var mu sync.Mutex
	for i := 0; i < 10; i++ {
		i := i
		s.Post(func() {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		})
	}
	// Do after the posts observes all of them: FIFO.
	if err := s.Do(context.Background(), func() {}); err != nil {
		t.Fatal(err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 10 {
		t.Fatalf("ran %d tasks, want 10", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("task order %v", got)
		}
	}
}

func TestDoReturnsAfterTask(t *testing.T) {
	s := New(1)
	defer s.Close()

	ran := false
	if err := s.Do(context.Background(), func() { ran = true }); err != nil {
		t.Fatal(err)
	}
	if !ran {
		t.Fatal("Do returned before the task ran")
	}
}

func TestDoContextCancel(t *testing.T) {
	s := New(1)
	defer s.Close()

	release := make(chan struct{})
	s.Post(func() { <-release })

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := s.Do(ctx, func() {})
	close(release)

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Do error = %v, want deadline exceeded", err)
	}
}

func TestCloseDrainsPendingTasks(t *testing.T) {
	s := New(16)

	var mu sync.Mutex
	count := 0
	for i := 0; i < 8; i++ {
		s.Post(func() {
			mu.Lock()
			count++
			mu.Unlock()
		})
	}
	s.Close()

	mu.Lock()
	defer mu.Unlock()
	if count != 8 {
		t.Fatalf("ran %d tasks before close, want 8", count)
	}
}

func TestPostAfterClose(t *testing.T) {
	s := New(1)
	s.Close()

	if s.Post(func() { t.Error("task ran after close") }) {
		t.Fatal("Post accepted after close")
	}
	if err := s.Do(context.Background(), func() {}); !errors.Is(err, ErrStopped) {
		t.Fatalf("Do error = %v, want ErrStopped", err)
	}
}

func TestCloseKeepsCommittedTasks(t *testing.T) {
	// Posts racing with Close: every Post that returned true must have
	// run by the time Close returns, even when the post lands during the
	// final drain.
	for round := 0; round < 50; round++ {
		s := New(4)

		var committed, ran atomic.Int64
		var wg sync.WaitGroup
		for w := 0; w < 4; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 20; i++ {
					if !s.Post(func() { ran.Add(1) }) {
						return
					}
					committed.Add(1)
				}
			}()
		}

		s.Close()
		wg.Wait()

		if got, want := ran.Load(), committed.Load(); got != want {
			t.Fatalf("round %d: ran %d of %d committed tasks", round, got, want)
		}
	}
}

func TestCloseIdempotent(t *testing.T) {
	s := New(1)
	s.Close()
	s.Close()
}

func TestTickerDeliversMeasuredTime(t *testing.T) {
	s := New(16)
	defer s.Close()

	var mu sync.Mutex
	var total time.Duration
	ticks := 0
	tk := NewTicker(s, 5*time.Millisecond, func(dt time.Duration) {
		mu.Lock()
		total += dt
		ticks++
		mu.Unlock()
	})
	tk.Start()
	time.Sleep(60 * time.Millisecond)
	tk.Stop()

	// Let in-flight posts settle.
	if err := s.Do(context.Background(), func() {}); err != nil {
		t.Fatal(err)
	}

	mu.Lock()
	defer mu.Unlock()
	if ticks == 0 {
		t.Fatal("ticker never fired")
	}
	if total <= 0 {
		t.Fatalf("measured time %v", total)
	}
}
