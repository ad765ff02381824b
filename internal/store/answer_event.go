package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

func (r *eventRepo) AppendAnswerEvent(ctx context.Context, data AnswerEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	query, args := builder().
		Insert(answerEventsTableName).
		Columns("sequence", "timestamp", "session_id", "username", "item_id",
			"expected", "given", "correct", "streak_after", "position").
		Values(seqNum, time.Now().UTC(), data.SessionID, data.User, data.ItemID,
			data.Expected, data.Given, data.Correct, data.StreakAfter, data.Position).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("save answer event: %w", err)
	}
	return nil
}

func (r *eventRepo) ItemAccuracy(ctx context.Context, user string) ([]ItemAccuracy, error) {
	b := builder()
	query, args := b.Select("item_id", "correct").
		From(b.Table(answerEventsTableName)).
		Where(entsql.EQ("username", user)).
		OrderBy("item_id", "sequence").
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query item accuracy: %w", err)
	}
	defer rows.Close()

	var out []ItemAccuracy
	for rows.Next() {
		var (
			id      int
			correct bool
		)
		if err := rows.Scan(&id, &correct); err != nil {
			return nil, fmt.Errorf("scan answer event: %w", err)
		}
		if len(out) == 0 || out[len(out)-1].ItemID != id {
			out = append(out, ItemAccuracy{ItemID: id})
		}
		acc := &out[len(out)-1]
		acc.Attempts++
		if correct {
			acc.Correct++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query item accuracy: %w", err)
	}
	return out, nil
}
