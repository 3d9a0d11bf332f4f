package session

import (
	"testing"
	"time"
)

func drain(t *testing.T, c *Countdown) []Tick {
	t.Helper()
	var ticks []Tick
	timeout := time.After(2 * time.Second)
	for {
		select {
		case tk, ok := <-c.C():
			if !ok {
				return ticks
			}
			ticks = append(ticks, tk)
		case <-timeout:
			t.Fatal("countdown channel never closed")
		}
	}
}

func TestCountdown_Expires(t *testing.T) {
	c := StartCountdown(40*time.Millisecond, 10*time.Millisecond)
	ticks := drain(t, c)

	if len(ticks) == 0 {
		t.Fatal("expected at least the expiry tick")
	}
	last := ticks[len(ticks)-1]
	if !last.Expired || last.Remaining != 0 {
		t.Errorf("last tick = %+v, want expired with zero remaining", last)
	}
	if c.State() != CountdownExpired {
		t.Errorf("state = %v, want expired", c.State())
	}
	if c.Cancel() {
		t.Error("Cancel after expiry should return false")
	}
}

func TestCountdown_CancelBeforeDeadline(t *testing.T) {
	c := StartCountdown(time.Second, 10*time.Millisecond)

	if !c.Cancel() {
		t.Fatal("first Cancel should succeed")
	}
	if c.Cancel() {
		t.Error("second Cancel should return false")
	}

	for _, tk := range drain(t, c) {
		if tk.Expired {
			t.Error("cancelled countdown published an expiry")
		}
	}
	<-c.Done()
	if c.State() != CountdownCancelled {
		t.Errorf("state = %v, want cancelled", c.State())
	}
}

func TestCountdown_RemainingDecreases(t *testing.T) {
	c := StartCountdown(200*time.Millisecond, 20*time.Millisecond)
	defer c.Cancel()

	if got := c.Remaining(); got != 200*time.Millisecond {
		t.Errorf("initial Remaining = %v, want 200ms", got)
	}

	tk := <-c.C()
	if tk.Remaining >= 200*time.Millisecond || tk.Remaining <= 0 {
		t.Errorf("tick Remaining = %v, want within (0, 200ms)", tk.Remaining)
	}
}

func TestCountdown_LatestValueWins(t *testing.T) {
	c := StartCountdown(60*time.Millisecond, 5*time.Millisecond)

	// Never read until it is over; only the newest tick survives.
	<-c.Done()
	ticks := drain(t, c)
	if len(ticks) != 1 || !ticks[0].Expired {
		t.Errorf("ticks = %+v, want a single expiry", ticks)
	}
}
