package store

import (
	"context"
	"time"
)

// Session event actions.
const (
	ActionStart = "start"
	ActionEnd   = "end"
)

// SessionEventData captures a session start or end.
type SessionEventData struct {
	SessionID    string
	User         string
	Action       string // ActionStart or ActionEnd
	Mode         string
	Turns        int
	Correct      int
	Mastered     int
	DurationSecs int
}

// AnswerEventData captures one judged response.
type AnswerEventData struct {
	SessionID   string
	User        string
	ItemID      int
	Expected    string
	Given       string
	Correct     bool
	StreakAfter int
	Position    int // reinsertion index, -1 when the item left the queue
}

// SessionSummaryRecord is a completed session as shown in history views.
type SessionSummaryRecord struct {
	SessionID    string
	Timestamp    time.Time
	Mode         string
	Turns        int
	Correct      int
	Mastered     int
	DurationSecs int
}

// ItemAccuracy is the lifetime answer record for one item.
type ItemAccuracy struct {
	ItemID   int
	Attempts int
	Correct  int
}

// Rate returns the fraction of correct attempts, 0 when never attempted.
func (a ItemAccuracy) Rate() float64 {
	if a.Attempts == 0 {
		return 0
	}
	return float64(a.Correct) / float64(a.Attempts)
}

// EventRepo provides append and query access to session history.
type EventRepo interface {
	// AppendSessionEvent records a session start or end.
	AppendSessionEvent(ctx context.Context, data SessionEventData) error

	// AppendAnswerEvent records a judged response.
	AppendAnswerEvent(ctx context.Context, data AnswerEventData) error

	// QuerySessionSummaries returns the user's completed sessions, newest
	// first. A limit of 0 returns all of them.
	QuerySessionSummaries(ctx context.Context, user string, limit int) ([]SessionSummaryRecord, error)

	// ItemAccuracy returns per-item answer counts for the user, ordered by item id.
	ItemAccuracy(ctx context.Context, user string) ([]ItemAccuracy, error)
}

// SnapshotData captures a user's streaks at a point in time.
type SnapshotData struct {
	Version  int         `json:"version"`
	Streaks  map[int]int `json:"streaks"`
	Mastered int         `json:"mastered"`
}

// Snapshot represents a point-in-time capture of a user's progress.
type Snapshot struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	User      string
	Data      SnapshotData
}

// SnapshotRepo manages progress snapshots.
type SnapshotRepo interface {
	// Save stores a new snapshot. A zero Sequence is assigned from the
	// global counter.
	Save(ctx context.Context, snap *Snapshot) error

	// Latest returns the user's most recent snapshot, or nil if none exist.
	Latest(ctx context.Context, user string) (*Snapshot, error)

	// Prune deletes all but the user's N most recent snapshots.
	Prune(ctx context.Context, user string, keep int) error
}
