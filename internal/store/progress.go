package store

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// progressInsertBatch bounds the rows per INSERT so the bind variables stay
// under SQLite's limit.
const progressInsertBatch = 200

// ProgressRepo stores per-user item streaks in the progress table. It
// satisfies progress.Backend.
type ProgressRepo struct {
	drv *entsql.Driver
}

// Load returns the user's streaks keyed by item id. An unknown user yields
// an empty map.
func (r *ProgressRepo) Load(ctx context.Context, user string) (map[int]int, error) {
	b := builder()
	query, args := b.Select("item_id", "streak").
		From(b.Table(progressTableName)).
		Where(entsql.EQ("username", user)).
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query progress: %w", err)
	}
	defer rows.Close()

	streaks := make(map[int]int)
	for rows.Next() {
		var id, streak int
		if err := rows.Scan(&id, &streak); err != nil {
			return nil, fmt.Errorf("scan progress: %w", err)
		}
		streaks[id] = streak
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query progress: %w", err)
	}
	return streaks, nil
}

// Save replaces the user's stored streaks with streaks in one transaction.
func (r *ProgressRepo) Save(ctx context.Context, user string, streaks map[int]int) error {
	tx, err := r.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("begin progress tx: %w", err)
	}
	if err := saveProgress(ctx, tx, user, streaks); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			err = fmt.Errorf("%w (rollback: %v)", err, rerr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit progress: %w", err)
	}
	return nil
}

func saveProgress(ctx context.Context, tx dialect.Tx, user string, streaks map[int]int) error {
	query, args := builder().
		Delete(progressTableName).
		Where(entsql.EQ("username", user)).
		Query()
	if err := tx.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("clear progress: %w", err)
	}
	if len(streaks) == 0 {
		return nil
	}

	now := time.Now().UTC()
	for ids := range slices.Chunk(slices.Sorted(maps.Keys(streaks)), progressInsertBatch) {
		ins := builder().
			Insert(progressTableName).
			Columns("username", "item_id", "streak", "updated_at")
		for _, id := range ids {
			ins = ins.Values(user, id, streaks[id], now)
		}
		query, args = ins.Query()
		if err := tx.Exec(ctx, query, args, nil); err != nil {
			return fmt.Errorf("insert progress: %w", err)
		}
	}
	return nil
}

// Users returns every user with stored progress, sorted by name.
func (r *ProgressRepo) Users(ctx context.Context) ([]string, error) {
	b := builder()
	query, args := b.Select("username").
		Distinct().
		From(b.Table(progressTableName)).
		OrderBy("username").
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
