package session

import (
	"sync/atomic"
	"time"
)

// CountdownState is the lifecycle of a Countdown.
type CountdownState int32

const (
	CountdownRunning CountdownState = iota
	CountdownCancelled
	CountdownExpired
)

// Tick is a countdown update. The last tick of an expired countdown has
// Expired set and Remaining zero.
type Tick struct {
	Remaining time.Duration
	Expired   bool
}

// Countdown is a cancellable per-question timer. Exactly one of Cancel and
// expiry wins; a cancelled countdown never publishes an expiry.
type Countdown struct {
	limit     time.Duration
	remaining atomic.Int64
	state     atomic.Int32

	ticks chan Tick
	stop  chan struct{}
	done  chan struct{}
}

// StartCountdown starts a countdown of limit that publishes a tick every
// interval.
func StartCountdown(limit, interval time.Duration) *Countdown {
	if interval <= 0 || interval > limit {
		interval = limit
	}
	c := &Countdown{
		limit: limit,
		ticks: make(chan Tick, 1),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	c.remaining.Store(int64(limit))
	c.state.Store(int32(CountdownRunning))

	go c.run(interval)
	return c
}

// C delivers ticks, newest value only. It is closed once the countdown stops.
func (c *Countdown) C() <-chan Tick { return c.ticks }

// Done is closed when the timer goroutine has exited.
func (c *Countdown) Done() <-chan struct{} { return c.done }

// Limit returns the configured duration.
func (c *Countdown) Limit() time.Duration { return c.limit }

// Remaining returns the time left as of the last tick.
func (c *Countdown) Remaining() time.Duration {
	return time.Duration(c.remaining.Load())
}

// State returns the current state.
func (c *Countdown) State() CountdownState {
	return CountdownState(c.state.Load())
}

// Cancel stops a running countdown. It returns false if the countdown had
// already expired or been cancelled.
func (c *Countdown) Cancel() bool {
	if !c.state.CompareAndSwap(int32(CountdownRunning), int32(CountdownCancelled)) {
		return false
	}
	close(c.stop)
	return true
}

func (c *Countdown) run(interval time.Duration) {
	defer close(c.done)
	defer close(c.ticks)

	deadline := time.Now().Add(c.limit)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case now := <-ticker.C:
			rem := deadline.Sub(now)
			if rem < 0 {
				rem = 0
			}
			c.remaining.Store(int64(rem))

			if rem == 0 {
				if c.state.CompareAndSwap(int32(CountdownRunning), int32(CountdownExpired)) {
					c.publish(Tick{Expired: true})
				}
				return
			}
			if c.State() == CountdownRunning {
				c.publish(Tick{Remaining: rem})
			}
		}
	}
}

// publish replaces any unread tick with t. The timer goroutine is the only
// sender, so the loop ends after at most one drain.
func (c *Countdown) publish(t Tick) {
	for {
		select {
		case c.ticks <- t:
			return
		default:
		}
		select {
		case <-c.ticks:
		default:
		}
	}
}
