package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `id,question,artist,song
1,https://www.youtube.com/watch?v=aaa,Radiohead,Creep
#2,https://www.youtube.com/watch?v=bbb,Commented,Out
3,https://www.youtube.com/watch?v=ccc&t=45,"Simon & Garfunkel","The Boxer"
x,https://www.youtube.com/watch?v=ddd,Bad,Id
5,https://www.youtube.com/watch?v=eee,Short
6,https://www.youtube.com/watch?v=fff,Duplicate,First
6,https://www.youtube.com/watch?v=ggg,Duplicate,Second
`

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "music_qa.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParse_SkipsCommentsAndMalformedRows(t *testing.T) {
	items, skipped, err := Parse(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	require.Len(t, items, 3)
	assert.Equal(t, Item{ID: 1, Stimulus: "https://www.youtube.com/watch?v=aaa", Answer: []string{"Radiohead", "Creep"}}, items[0])
	assert.Equal(t, []string{"Simon & Garfunkel", "The Boxer"}, items[1].Answer)
	assert.Equal(t, "First", items[2].Song())

	// bad id, short row, duplicate id
	require.Len(t, skipped, 3)
	for _, s := range skipped {
		assert.True(t, errors.Is(s, ErrMalformedEntry), "expected ErrMalformedEntry, got %v", s)
	}
}

func TestParse_Empty(t *testing.T) {
	items, skipped, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Empty(t, skipped)
}

func TestParse_MissingColumn(t *testing.T) {
	_, _, err := Parse(strings.NewReader("id,question,artist\n1,u,a\n"))
	assert.Error(t, err)
}

func TestFile_LoadMissingIsEmpty(t *testing.T) {
	f := NewFile(filepath.Join(t.TempDir(), "absent.csv"), nil)

	items, err := f.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)

	m, err := f.Marker()
	require.NoError(t, err)
	assert.True(t, m.IsZero())
}

func TestFile_StoreAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "music_qa.csv")
	f := NewFile(path, nil)
	ctx := context.Background()

	want := []Item{
		{ID: 1, Stimulus: "https://example.com/a", Answer: []string{"Abe", "Song, With Comma"}},
		{ID: 4, Stimulus: "https://example.com/b", Answer: []string{`Quote "Q"`, "Song2"}},
	}
	require.NoError(t, f.Store(ctx, want))

	got, err := f.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file should not be left behind")
}

func TestFile_AppendAssignsFreshIDs(t *testing.T) {
	f := NewFile(writeCatalog(t, sampleCSV), nil)
	ctx := context.Background()

	added, err := f.Append(ctx,
		Item{Stimulus: "https://example.com/new1", Answer: []string{"New", "One"}},
		Item{Stimulus: "https://example.com/new2", Answer: []string{"New", "Two"}},
	)
	require.NoError(t, err)
	require.Len(t, added, 2)
	assert.Equal(t, 7, added[0].ID)
	assert.Equal(t, 8, added[1].ID)

	items, err := f.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 5)
}

func TestFile_AppendKeepsCommentAndMalformedRows(t *testing.T) {
	const content = "id,question,artist,song\n1,u1,A,S\n#2,u2,B,T\nx,u3,C,U\n"
	path := writeCatalog(t, content)
	f := NewFile(path, nil)
	ctx := context.Background()

	added, err := f.Append(ctx, Item{Stimulus: "u4", Answer: []string{"D", "V"}})
	require.NoError(t, err)
	require.Len(t, added, 1)
	assert.Equal(t, 3, added[0].ID, "commented-out id 2 must not be reused")

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content+"3,u4,D,V\n", string(raw))

	items, err := f.Load(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, []int{1, 3}, []int{items[0].ID, items[1].ID})
}

func TestFile_AppendNoTrailingNewline(t *testing.T) {
	path := writeCatalog(t, "id,question,artist,song\n1,u1,A,S")
	f := NewFile(path, nil)

	_, err := f.Append(context.Background(), Item{Stimulus: "u2", Answer: []string{"B", "T"}})
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "id,question,artist,song\n1,u1,A,S\n2,u2,B,T\n", string(raw))
}

func TestFile_AppendCreatesMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "music_qa.csv")
	f := NewFile(path, nil)

	added, err := f.Append(context.Background(), Item{Stimulus: "u1", Answer: []string{"A", "S"}})
	require.NoError(t, err)
	assert.Equal(t, 1, added[0].ID)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "id,question,artist,song\n1,u1,A,S\n", string(raw))
}

func TestFile_MarkerChangesOnRewrite(t *testing.T) {
	path := writeCatalog(t, sampleCSV)
	f := NewFile(path, nil)

	before, err := f.Marker()
	require.NoError(t, err)

	later := before.ModTime.Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, later, later))

	after, err := f.Marker()
	require.NoError(t, err)
	assert.True(t, after.Changed(before))
	assert.False(t, after.Changed(after))
}

func TestItemLabel(t *testing.T) {
	it := Item{Answer: []string{"Radiohead", "Creep"}}
	if got := it.Label(); got != "Radiohead - Creep" {
		t.Errorf("Label() = %q", got)
	}
	if got := (Item{}).Artist(); got != "" {
		t.Errorf("Artist() on empty = %q", got)
	}
}
