package hal

import (
	"sync"
	"time"
)

// TickerTimer approximates a high frequency timer with a time.Ticker. Every
// Period it runs as many ticks as elapsed at the requested frequency.
type TickerTimer struct {
	Period time.Duration

	lock sync.Mutex
	stop chan struct{}
	done chan struct{}
}

// DefaultTimerPeriod is the batching period of TickerTimer.
const DefaultTimerPeriod = time.Millisecond

// Start implements Timer.
func (t *TickerTimer) Start(hz int, tick func()) error {
	if hz <= 0 {
		return ErrInvalidFrequency
	}
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.stop != nil {
		return ErrTimerRunning
	}
	period := t.Period
	if period <= 0 {
		period = DefaultTimerPeriod
	}
	t.stop, t.done = make(chan struct{}), make(chan struct{})
	go t.run(period, hz, tick, t.stop, t.done)
	return nil
}

// Stop implements Timer. It returns after the last tick completed.
func (t *TickerTimer) Stop() {
	t.lock.Lock()
	defer t.lock.Unlock()
	if t.stop == nil {
		return
	}
	close(t.stop)
	<-t.done
	t.stop, t.done = nil, nil
}

func (t *TickerTimer) run(period time.Duration, hz int, tick func(), stop, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(period)
	defer ticker.Stop()
	start, ticks := time.Now(), int64(0)
	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			due := int64(now.Sub(start)) * int64(hz) / int64(time.Second)
			for ; ticks < due; ticks++ {
				tick()
			}
		}
	}
}
