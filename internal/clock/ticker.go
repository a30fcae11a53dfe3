package clock

import (
	"sync"
	"time"
)

// Ticker calls fn once per interval on its own goroutine until stopped.
type Ticker struct {
	stop chan struct{}
	once sync.Once
}

func StartTicker(interval time.Duration, fn func()) *Ticker {
	t := &Ticker{stop: make(chan struct{})}
	go t.run(interval, fn)
	return t
}

func (t *Ticker) run(interval time.Duration, fn func()) {
	tk := time.NewTicker(interval)
	defer tk.Stop()
	for {
		select {
		case <-t.stop:
			return
		case <-tk.C:
			select {
			case <-t.stop:
				return
			default:
			}
			fn()
		}
	}
}

// Stop is idempotent and does not wait for the goroutine, so it may be called from
// inside fn or while holding a lock fn needs. A tick already in flight can still run.
func (t *Ticker) Stop() {
	if t == nil {
		return
	}
	t.once.Do(func() { close(t.stop) })
}
