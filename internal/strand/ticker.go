package strand

import "time"

// Ticker reposts a periodic task onto the strand, passing the measured
// elapsed time so slow ticks do not lose game time. Only one tick task
// is ever running: the strand serializes them by construction.
type Ticker struct {
	strand *Strand
	period time.Duration
	fn     func(dt time.Duration)

	stop    chan struct{}
	stopped chan struct{}
}

func NewTicker(s *Strand, period time.Duration, fn func(dt time.Duration)) *Ticker {
	return &Ticker{
		strand:  s,
		period:  period,
		fn:      fn,
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

func (t *Ticker) Start() {
	go t.run()
}

func (t *Ticker) run() {
	defer close(t.stopped)
	tick := time.NewTicker(t.period)
	defer tick.Stop()

	last := time.Now()
	for {
		select {
		case now := <-tick.C:
			dt := now.Sub(last)
			last = now
			if !t.strand.Post(func() { t.fn(dt) }) {
				return
			}
		case <-t.stop:
			return
		}
	}
}

// Stop halts rescheduling and waits for the timer goroutine to exit. A
// tick already posted may still run on the strand.
func (t *Ticker) Stop() {
	close(t.stop)
	<-t.stopped
}
