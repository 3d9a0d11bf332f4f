package session

import (
	sess "github.com/abhisek/feaquiz/internal/session"
)

// countdownTickMsg carries one countdown update for the question identified
// by Token. Closed is set when the countdown stopped without expiring.
type countdownTickMsg struct {
	Token  uint64
	Tick   sess.Tick
	Closed bool
}

// sessionEndMsg is sent to trigger the session end flow.
type sessionEndMsg struct{}
