package persist

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/scavenge/server/internal/sim"
)

type fakeInserter struct {
	mu       sync.Mutex
	inserted []RetiredRecord
	failures int
	calls    int
}

func (f *fakeInserter) Insert(ctx context.Context, records []RetiredRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failures > 0 {
		f.failures--
		return errors.New("insert failed")
	}
	f.inserted = append(f.inserted, records...)
	return nil
}

func fastSinkConfig() SinkConfig {
	cfg := DefaultSinkConfig()
	cfg.BaseBackoff = time.Millisecond
	cfg.MaxBackoff = 2 * time.Millisecond
	return cfg
}

func TestSinkDeliversRecords(t *testing.T) {
	repo := &fakeInserter{}
	s := NewSink(repo, fastSinkConfig(), zap.NewNop())

	s.Enqueue([]sim.Record{
		{Name: "ace", Score: 100, PlayTimeMS: 12500},
		{Name: "bo", Score: 40, PlayTimeMS: 8000},
	})
	s.Close()

	repo.mu.Lock()
	defer repo.mu.Unlock()
	if len(repo.inserted) != 2 {
		t.Fatalf("inserted %d records, want 2", len(repo.inserted))
	}
	r := repo.inserted[0]
	if r.Name != "ace" || r.Score != 100 || r.PlayTimeMS != 12500 {
		t.Fatalf("record = %+v", r)
	}
	if r.UUID == repo.inserted[1].UUID {
		t.Fatal("records share a UUID")
	}
}

func TestSinkRetriesTransientFailures(t *testing.T) {
	repo := &fakeInserter{failures: 2}
	s := NewSink(repo, fastSinkConfig(), zap.NewNop())

	s.Enqueue([]sim.Record{{Name: "ace", Score: 1}})
	s.Close()

	repo.mu.Lock()
	defer repo.mu.Unlock()
	if repo.calls != 3 {
		t.Fatalf("made %d attempts, want 3", repo.calls)
	}
	if len(repo.inserted) != 1 {
		t.Fatalf("inserted %d records after retries", len(repo.inserted))
	}
}

func TestSinkDropsAfterRetryCap(t *testing.T) {
	cfg := fastSinkConfig()
	cfg.RetryCap = 3
	repo := &fakeInserter{failures: 10}
	s := NewSink(repo, cfg, zap.NewNop())

	s.Enqueue([]sim.Record{{Name: "ace", Score: 1}})
	s.Close()

	repo.mu.Lock()
	defer repo.mu.Unlock()
	if repo.calls != 3 {
		t.Fatalf("made %d attempts, want retry cap 3", repo.calls)
	}
	if len(repo.inserted) != 0 {
		t.Fatal("capped batch was inserted anyway")
	}
}
