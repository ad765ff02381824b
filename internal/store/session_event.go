package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

func (r *eventRepo) AppendSessionEvent(ctx context.Context, data SessionEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	query, args := builder().
		Insert(sessionEventsTableName).
		Columns("sequence", "timestamp", "session_id", "username", "action",
			"mode", "turns", "correct", "mastered", "duration_secs").
		Values(seqNum, time.Now().UTC(), data.SessionID, data.User, data.Action,
			data.Mode, data.Turns, data.Correct, data.Mastered, data.DurationSecs).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("save session event: %w", err)
	}
	return nil
}

func (r *eventRepo) QuerySessionSummaries(ctx context.Context, user string, limit int) ([]SessionSummaryRecord, error) {
	b := builder()
	sel := b.Select("session_id", "timestamp", "mode", "turns", "correct", "mastered", "duration_secs").
		From(b.Table(sessionEventsTableName)).
		Where(entsql.And(
			entsql.EQ("username", user),
			entsql.EQ("action", ActionEnd),
		)).
		OrderBy(entsql.Desc("sequence"))
	if limit > 0 {
		sel = sel.Limit(limit)
	}
	query, args := sel.Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query session summaries: %w", err)
	}
	defer rows.Close()

	var records []SessionSummaryRecord
	for rows.Next() {
		var rec SessionSummaryRecord
		if err := rows.Scan(&rec.SessionID, &rec.Timestamp, &rec.Mode, &rec.Turns,
			&rec.Correct, &rec.Mastered, &rec.DurationSecs); err != nil {
			return nil, fmt.Errorf("scan session summary: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query session summaries: %w", err)
	}
	return records, nil
}
