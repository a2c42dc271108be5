package persist

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/scavenge/server/internal/sim"
)

// RecordInserter is the slice of RecordRepo the sink needs.
type RecordInserter interface {
	Insert(ctx context.Context, records []RetiredRecord) error
}

// SinkConfig tunes the retirement pipeline.
type SinkConfig struct {
	QueueSize     int           `toml:"queue_size"`
	RetryCap      int           `toml:"retry_cap"`
	BaseBackoff   time.Duration `toml:"base_backoff"`
	MaxBackoff    time.Duration `toml:"max_backoff"`
	InsertTimeout time.Duration `toml:"insert_timeout"`
}

func DefaultSinkConfig() SinkConfig {
	return SinkConfig{
		QueueSize:     256,
		RetryCap:      5,
		BaseBackoff:   250 * time.Millisecond,
		MaxBackoff:    5 * time.Second,
		InsertTimeout: 5 * time.Second,
	}
}

// Sink moves retirement records from the simulator to the relational
// store without ever blocking the coordinator strand: Enqueue hands the
// batch to a dedicated goroutine that owns all database I/O.
type Sink struct {
	repo RecordInserter
	cfg  SinkConfig
	log  *zap.Logger

	queue chan []RetiredRecord
	done  chan struct{}
}

func NewSink(repo RecordInserter, cfg SinkConfig, log *zap.Logger) *Sink {
	s := &Sink{
		repo:  repo,
		cfg:   cfg,
		log:   log,
		queue: make(chan []RetiredRecord, cfg.QueueSize),
		done:  make(chan struct{}),
	}
	go s.loop()
	return s
}

// Enqueue assigns a fresh UUID to every retirement event and queues the
// batch. Never blocks: when the queue is full the batch is dropped and
// logged at error severity.
func (s *Sink) Enqueue(records []sim.Record) {
	batch := make([]RetiredRecord, len(records))
	for i, r := range records {
		batch[i] = RetiredRecord{
			UUID:       uuid.New(),
			Name:       r.Name,
			Score:      r.Score,
			PlayTimeMS: r.PlayTimeMS,
		}
	}
	select {
	case s.queue <- batch:
	default:
		s.log.Error("retirement queue full, dropping batch", zap.Int("records", len(batch)))
	}
}

func (s *Sink) loop() {
	defer close(s.done)
	for batch := range s.queue {
		s.insertWithRetry(batch)
	}
}

func (s *Sink) insertWithRetry(batch []RetiredRecord) {
	backoff := s.cfg.BaseBackoff
	for attempt := 1; ; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.InsertTimeout)
		err := s.repo.Insert(ctx, batch)
		cancel()
		if err == nil {
			return
		}

		if attempt >= s.cfg.RetryCap {
			s.log.Error("retirement insert dropped after retries",
				zap.Int("records", len(batch)),
				zap.Int("attempts", attempt),
				zap.Error(err))
			return
		}
		s.log.Warn("retirement insert failed, retrying",
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
			zap.Error(err))
		time.Sleep(backoff)
		backoff *= 2
		if backoff > s.cfg.MaxBackoff {
			backoff = s.cfg.MaxBackoff
		}
	}
}

// Close stops intake and drains in-flight batches.
func (s *Sink) Close() {
	close(s.queue)
	<-s.done
}
