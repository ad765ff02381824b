package session

import (
	"github.com/abhisek/earworm/internal/answer"
	"github.com/abhisek/earworm/internal/catalog"
)

// Response is what the learner gave for one item.
type Response struct {
	// Parts holds the typed answer parts in normal mode.
	Parts []string
	// Known is the self-report in self-assessment mode.
	Known bool
}

// Judge decides whether resp answers item under mode.
func Judge(mode Mode, resp Response, item catalog.Item) bool {
	if mode == ModeSelfAssessment {
		return resp.Known
	}
	return answer.Matches(resp.Parts, item.Answer)
}
