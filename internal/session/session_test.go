package session

import (
	"context"
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/earworm/internal/catalog"
	"github.com/abhisek/earworm/internal/progress"
	"github.com/abhisek/earworm/internal/scheduler"
	"github.com/abhisek/earworm/internal/store"
)

const testCatalog = `id,question,artist,song
1,https://example.com/watch?v=a,Zed,Song1
2,https://example.com/watch?v=b,Abe,Song2
3,https://example.com/watch?v=c&t=30,Mia,Song3
`

type presentCall struct {
	item   catalog.Item
	offset *int
}

type fakePresenter struct {
	calls []presentCall
	err   error
}

func (p *fakePresenter) Present(_ context.Context, item catalog.Item, offset *int) error {
	p.calls = append(p.calls, presentCall{item: item, offset: offset})
	return p.err
}

type responderFunc func(ctx context.Context, mode Mode, item catalog.Item) (Response, error)

func (f responderFunc) Respond(ctx context.Context, mode Mode, item catalog.Item) (Response, error) {
	return f(ctx, mode, item)
}

// alwaysRight answers every item with its canonical answer.
var alwaysRight = responderFunc(func(_ context.Context, _ Mode, item catalog.Item) (Response, error) {
	return Response{Parts: item.Answer}, nil
})

type fakeFeedback struct {
	signals []bool
}

func (f *fakeFeedback) Signal(_ context.Context, correct bool) {
	f.signals = append(f.signals, correct)
}

type fakeReporter struct {
	skipped []int
	judged  int
}

func (r *fakeReporter) Skipped(_ context.Context, items []catalog.Item) {
	for _, it := range items {
		r.skipped = append(r.skipped, it.ID)
	}
}

func (r *fakeReporter) Judged(context.Context, scheduler.Outcome) {
	r.judged++
}

func newTestScheduler(t *testing.T, csv string, backend progress.Backend) *scheduler.Scheduler {
	t.Helper()
	path := filepath.Join(t.TempDir(), "music_qa.csv")
	if csv != "" {
		require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))
	}
	tr, err := progress.Open(context.Background(), "alice", backend)
	require.NoError(t, err)
	return scheduler.New(scheduler.Config{
		Catalog: catalog.NewFile(path, nil),
		Tracker: tr,
		Rand:    rand.New(rand.NewPCG(7, 7)),
	})
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"normal", ModeNormal, false},
		{"1", ModeNormal, false},
		{" Self-Assessment ", ModeSelfAssessment, false},
		{"2", ModeSelfAssessment, false},
		{"3", "", true},
		{"", "", true},
		{"hard", "", true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if tt.wantErr {
			assert.True(t, errors.Is(err, ErrInvalidPlayMode), "ParseMode(%q)", tt.in)
			continue
		}
		assert.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestJudge(t *testing.T) {
	item := catalog.Item{ID: 1, Answer: []string{"Beyoncé", "Crazy in Love ft. Jay-Z"}}

	assert.True(t, Judge(ModeNormal, Response{Parts: []string{"beyoncé", "crazy in love feat. jay-z"}}, item))
	assert.False(t, Judge(ModeNormal, Response{Parts: []string{"beyonce"}}, item))
	assert.True(t, Judge(ModeNormal, Response{Parts: []string{"y", "y"}}, item), "self-report shortcut")
	assert.True(t, Judge(ModeSelfAssessment, Response{Known: true}, item))
	assert.False(t, Judge(ModeSelfAssessment, Response{Parts: item.Answer}, item))
}

func TestNewRunner_InvalidMode(t *testing.T) {
	_, err := NewRunner(Config{
		Scheduler: newTestScheduler(t, testCatalog, progress.NewMemoryBackend()),
		Mode:      "expert",
		Presenter: &fakePresenter{},
		Responder: alwaysRight,
	})
	assert.True(t, errors.Is(err, ErrInvalidPlayMode))
}

func TestRun_AllCorrectMastersEverything(t *testing.T) {
	backend := progress.NewMemoryBackend()
	presenter := &fakePresenter{}
	feedback := &fakeFeedback{}
	reporter := &fakeReporter{}

	r, err := NewRunner(Config{
		Scheduler: newTestScheduler(t, testCatalog, backend),
		Mode:      ModeNormal,
		Presenter: presenter,
		Responder: alwaysRight,
		Feedback:  feedback,
		Reporter:  reporter,
	})
	require.NoError(t, err)

	sum, err := r.Run(context.Background())
	require.NoError(t, err)

	assert.True(t, sum.Exhausted)
	assert.Equal(t, 12, sum.Turns)
	assert.Equal(t, 12, sum.Correct)
	assert.InDelta(t, 1.0, sum.Accuracy, 1e-9)
	assert.Len(t, sum.Mastered, 3)
	assert.Equal(t, 3, sum.Distribution.Done)
	assert.Len(t, feedback.signals, 12)
	assert.Equal(t, 12, reporter.judged)
	assert.Equal(t, 12, backend.Saves(), "progress persisted after every response")

	// Abe sorts first among fresh items.
	assert.Equal(t, 2, presenter.calls[0].item.ID)

	// Only presentations at streak 3 request an offset.
	var offsets int
	for _, c := range presenter.calls {
		if c.offset != nil {
			offsets++
		}
	}
	assert.Equal(t, 3, offsets)

	saved, err := backend.Load(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, map[int]int{1: 4, 2: 4, 3: 4}, saved)
}

func TestRun_SkipsAlreadyMastered(t *testing.T) {
	backend := progress.NewMemoryBackend()
	require.NoError(t, backend.Save(context.Background(), "alice", map[int]int{1: 4, 2: 4, 3: 3}))
	reporter := &fakeReporter{}

	r, err := NewRunner(Config{
		Scheduler: newTestScheduler(t, testCatalog, backend),
		Mode:      ModeNormal,
		Presenter: &fakePresenter{},
		Responder: alwaysRight,
		Reporter:  reporter,
	})
	require.NoError(t, err)

	sum, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Turns)
	assert.Equal(t, 2, sum.Skipped)
	assert.ElementsMatch(t, []int{1, 2}, reporter.skipped)
}

func TestRun_QuitEndsCleanly(t *testing.T) {
	answered := 0
	responder := responderFunc(func(_ context.Context, _ Mode, item catalog.Item) (Response, error) {
		if answered == 2 {
			return Response{}, ErrQuit
		}
		answered++
		return Response{Parts: []string{"wrong", "guess"}}, nil
	})

	r, err := NewRunner(Config{
		Scheduler: newTestScheduler(t, testCatalog, progress.NewMemoryBackend()),
		Mode:      ModeNormal,
		Presenter: &fakePresenter{},
		Responder: responder,
	})
	require.NoError(t, err)

	sum, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, sum.Exhausted)
	assert.Equal(t, 2, sum.Turns)
	assert.Equal(t, 0, sum.Correct)
	assert.Equal(t, 0.0, sum.Accuracy)
}

func TestRun_ResponderFailureIsReported(t *testing.T) {
	boom := errors.New("terminal closed")
	responder := responderFunc(func(context.Context, Mode, catalog.Item) (Response, error) {
		return Response{}, boom
	})

	r, err := NewRunner(Config{
		Scheduler: newTestScheduler(t, testCatalog, progress.NewMemoryBackend()),
		Mode:      ModeNormal,
		Presenter: &fakePresenter{},
		Responder: responder,
	})
	require.NoError(t, err)

	sum, err := r.Run(context.Background())
	assert.True(t, errors.Is(err, boom))
	require.NotNil(t, sum)
	assert.Equal(t, 0, sum.Turns)
}

func TestRun_PresenterFailureDoesNotAbort(t *testing.T) {
	r, err := NewRunner(Config{
		Scheduler: newTestScheduler(t, testCatalog, progress.NewMemoryBackend()),
		Mode:      ModeNormal,
		Presenter: &fakePresenter{err: errors.New("no browser")},
		Responder: alwaysRight,
	})
	require.NoError(t, err)

	sum, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, sum.Exhausted)
	assert.Equal(t, 12, sum.Turns)
}

func TestRun_EmptyCatalog(t *testing.T) {
	r, err := NewRunner(Config{
		Scheduler: newTestScheduler(t, "", progress.NewMemoryBackend()),
		Mode:      ModeNormal,
		Presenter: &fakePresenter{},
		Responder: alwaysRight,
	})
	require.NoError(t, err)

	_, err = r.Run(context.Background())
	assert.True(t, errors.Is(err, scheduler.ErrEmptyCatalog))
}

func TestRun_SelfAssessment(t *testing.T) {
	calls := 0
	responder := responderFunc(func(_ context.Context, mode Mode, _ catalog.Item) (Response, error) {
		assert.Equal(t, ModeSelfAssessment, mode)
		calls++
		if calls > 6 {
			return Response{}, ErrQuit
		}
		return Response{Known: calls%2 == 1}, nil
	})

	r, err := NewRunner(Config{
		Scheduler: newTestScheduler(t, testCatalog, progress.NewMemoryBackend()),
		Mode:      ModeSelfAssessment,
		Presenter: &fakePresenter{},
		Responder: responder,
	})
	require.NoError(t, err)

	sum, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, sum.Turns)
	assert.Equal(t, 3, sum.Correct)
	assert.Equal(t, ModeSelfAssessment, sum.Mode)
}

func TestRun_RecordsHistory(t *testing.T) {
	st, err := store.Open("file::memory:?cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	r, err := NewRunner(Config{
		Scheduler: newTestScheduler(t, testCatalog, st.ProgressRepo()),
		Mode:      ModeNormal,
		Presenter: &fakePresenter{},
		Responder: alwaysRight,
		Recorder:  NewRecorder(st.EventRepo(), st.SnapshotRepo(), nil),
	})
	require.NoError(t, err)

	sum, err := r.Run(context.Background())
	require.NoError(t, err)

	ctx := context.Background()
	history, err := st.EventRepo().QuerySessionSummaries(ctx, "alice", 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, sum.SessionID, history[0].SessionID)
	assert.Equal(t, 12, history[0].Turns)
	assert.Equal(t, 3, history[0].Mastered)

	acc, err := st.EventRepo().ItemAccuracy(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, acc, 3)
	for _, a := range acc {
		assert.Equal(t, 4, a.Attempts)
		assert.Equal(t, 4, a.Correct)
	}

	snap, err := st.SnapshotRepo().Latest(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, 3, snap.Data.Mastered)

	streaks, err := st.ProgressRepo().Load(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, map[int]int{1: 4, 2: 4, 3: 4}, streaks)
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	responder := responderFunc(func(_ context.Context, _ Mode, item catalog.Item) (Response, error) {
		cancel()
		return Response{Parts: item.Answer}, nil
	})

	r, err := NewRunner(Config{
		Scheduler: newTestScheduler(t, testCatalog, progress.NewMemoryBackend()),
		Mode:      ModeNormal,
		Presenter: &fakePresenter{},
		Responder: responder,
	})
	require.NoError(t, err)

	sum, err := r.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Turns)
	assert.False(t, sum.Exhausted)
}

func TestState_Accuracy(t *testing.T) {
	st := NewState("id", "alice", ModeNormal)
	assert.Equal(t, 0.0, st.Accuracy())
	st.Record(scheduler.Outcome{Correct: true, Position: 2})
	st.Record(scheduler.Outcome{Correct: false, Position: 2})
	st.Record(scheduler.Outcome{Correct: true, Position: -1, Item: catalog.Item{ID: 9}})
	assert.InDelta(t, 2.0/3.0, st.Accuracy(), 1e-9)
	assert.Len(t, st.MasteredItems, 1)
	assert.Equal(t, PhaseFeedback, st.Phase)
}
