package scheduler

import (
	"maps"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/abhisek/earworm/internal/catalog"
)

// StreakFunc looks up the current streak of an item.
type StreakFunc func(itemID int) int

// BuildQueue orders items for a session. Items are bucketed by streak and
// buckets are concatenated in ascending streak order. Bucket 0 is sorted by
// the first answer part so fresh runs are reproducible; every other bucket is
// shuffled with rng. Mastered buckets are kept and skipped at consumption.
func BuildQueue(items []catalog.Item, streakOf StreakFunc, rng *rand.Rand) []catalog.Item {
	buckets := make(map[int][]catalog.Item)
	for _, it := range items {
		s := streakOf(it.ID)
		buckets[s] = append(buckets[s], it)
	}

	queue := make([]catalog.Item, 0, len(items))
	for _, s := range slices.Sorted(maps.Keys(buckets)) {
		bucket := buckets[s]
		if s == 0 {
			slices.SortStableFunc(bucket, func(a, b catalog.Item) int {
				return strings.Compare(a.Artist(), b.Artist())
			})
		} else {
			rng.Shuffle(len(bucket), func(i, j int) {
				bucket[i], bucket[j] = bucket[j], bucket[i]
			})
		}
		queue = append(queue, bucket...)
	}
	return queue
}

// ReinsertPosition returns the queue index an item goes back to after a
// response that left it at streak. A miss (streak 0) returns near the front;
// each success doubles the distance. The result is clamped to queueLen.
func ReinsertPosition(queueLen, streak int) int {
	if streak == 0 {
		return min(queueLen, 2)
	}
	return min(queueLen, 1<<(streak+1))
}
