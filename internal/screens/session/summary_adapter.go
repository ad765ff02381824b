package session

import (
	"github.com/abhisek/earworm/internal/screen"
	"github.com/abhisek/earworm/internal/screens/summary"
	sess "github.com/abhisek/earworm/internal/session"
)

// newSummaryScreenAdapter creates the summary screen shown after a session.
func newSummaryScreenAdapter(s *sess.Summary) screen.Screen {
	return summary.New(s)
}
