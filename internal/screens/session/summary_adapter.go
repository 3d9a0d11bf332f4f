package session

import (
	"github.com/abhisek/feaquiz/internal/screen"
	"github.com/abhisek/feaquiz/internal/screens/summary"
	sess "github.com/abhisek/feaquiz/internal/session"
)

// newSummaryScreenAdapter creates a summary screen from a finished session.
func newSummaryScreenAdapter(env *screen.Env, res *sess.Result, persisted <-chan error) screen.Screen {
	return summary.New(env, res, persisted)
}
