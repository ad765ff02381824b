package catalog

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrMalformedEntry marks a catalog row that could not be parsed into an Item.
// Such rows are skipped; they never abort a load.
var ErrMalformedEntry = errors.New("malformed catalog entry")

// Header is the CSV header of a catalog file.
var Header = []string{"id", "question", "artist", "song"}

// commentPrefix marks rows whose id column is a comment.
const commentPrefix = "#"

// File is a Source backed by a flat CSV file.
type File struct {
	path   string
	logger *slog.Logger
}

var _ Source = (*File)(nil)

// NewFile creates a catalog over the CSV file at path.
func NewFile(path string, logger *slog.Logger) *File {
	if logger == nil {
		logger = slog.Default()
	}
	return &File{path: path, logger: logger}
}

// Path returns the backing file path.
func (f *File) Path() string {
	return f.path
}

// Marker returns the file's modification time. A missing file yields the
// zero marker.
func (f *File) Marker() (Marker, error) {
	info, err := os.Stat(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Marker{}, nil
		}
		return Marker{}, fmt.Errorf("stat catalog: %w", err)
	}
	return Marker{ModTime: info.ModTime()}, nil
}

// Load reads every item from the file. Comment rows are ignored and
// malformed rows are logged and skipped. A missing file is an empty catalog.
func (f *File) Load(ctx context.Context) ([]Item, error) {
	fh, err := os.Open(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer fh.Close()

	items, skipped, err := Parse(fh)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", f.path, err)
	}
	for _, s := range skipped {
		f.logger.WarnContext(ctx, "skipping catalog row", "path", f.path, "error", s)
	}
	return items, nil
}

// Append adds entries to the end of the catalog. Existing rows, comment and
// malformed ones included, are kept byte for byte. Each entry is given the
// next id not used by any row; the stored items are returned.
func (f *File) Append(_ context.Context, entries ...Item) ([]Item, error) {
	raw, err := os.ReadFile(f.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	header := Header
	var next int
	if len(bytes.TrimSpace(raw)) > 0 {
		header, next, err = scanIDs(raw)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", f.path, err)
		}
	} else {
		raw = nil
		next = 1
	}
	cols, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	added := make([]Item, 0, len(entries))
	for _, e := range entries {
		e.ID = next
		next++
		added = append(added, e)
	}

	err = f.writeAtomic(func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if raw == nil {
			if err := cw.Write(header); err != nil {
				return err
			}
		} else {
			if _, err := w.Write(raw); err != nil {
				return err
			}
			if raw[len(raw)-1] != '\n' {
				if _, err := io.WriteString(w, "\n"); err != nil {
					return err
				}
			}
		}
		for _, it := range added {
			record := make([]string, len(header))
			record[cols.id] = strconv.Itoa(it.ID)
			record[cols.question] = it.Stimulus
			record[cols.artist] = it.Artist()
			record[cols.song] = it.Song()
			if err := cw.Write(record); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
	if err != nil {
		return nil, err
	}
	return added, nil
}

// scanIDs returns the header of raw catalog CSV and one more than the
// largest id on any row. Commented-out ids count so a disabled item's id is
// never handed to a new one.
func scanIDs(raw []byte) ([]string, int, error) {
	cr := csv.NewReader(bytes.NewReader(raw))
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}
	cols, err := columnIndex(header)
	if err != nil {
		return nil, 0, err
	}

	maxID := 0
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				continue
			}
			return nil, 0, err
		}
		if cols.id >= len(record) {
			continue
		}
		rawID := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(record[cols.id]), commentPrefix))
		if id, err := strconv.Atoi(rawID); err == nil {
			maxID = max(maxID, id)
		}
	}
	return header, maxID + 1, nil
}

// Store rewrites the whole catalog.
func (f *File) Store(_ context.Context, items []Item) error {
	return f.writeAtomic(func(w io.Writer) error { return Write(w, items) })
}

// writeAtomic writes the catalog through a temporary file that replaces it
// in one rename, so readers never see a partial file.
func (f *File) writeAtomic(write func(io.Writer) error) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create catalog dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".catalog-*.csv")
	if err != nil {
		return fmt.Errorf("create temp catalog: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if err := write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("write catalog: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp catalog: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return fmt.Errorf("replace catalog: %w", err)
	}
	return nil
}

// Parse reads catalog rows from r. It returns the parsed items and one error
// per skipped row. The returned error is non-nil only when r itself cannot
// be read as CSV.
func Parse(r io.Reader) ([]Item, []error, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := columnIndex(header)
	if err != nil {
		return nil, nil, err
	}

	var (
		items   []Item
		skipped []error
		seen    = make(map[int]bool)
	)
	for row := 1; ; row++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				skipped = append(skipped, fmt.Errorf("row %d: %w: %v", row, ErrMalformedEntry, err))
				continue
			}
			return nil, nil, err
		}

		item, ok, err := parseRecord(record, cols)
		if err != nil {
			skipped = append(skipped, fmt.Errorf("row %d: %w", row, err))
			continue
		}
		if !ok {
			continue
		}
		if seen[item.ID] {
			skipped = append(skipped, fmt.Errorf("row %d: %w: duplicate id %d", row, ErrMalformedEntry, item.ID))
			continue
		}
		seen[item.ID] = true
		items = append(items, item)
	}
	return items, skipped, nil
}

// Write encodes items as catalog CSV, header first.
func Write(w io.Writer, items []Item) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, it := range items {
		record := []string{strconv.Itoa(it.ID), it.Stimulus, it.Artist(), it.Song()}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

type columns struct {
	id, question, artist, song int
}

func columnIndex(header []string) (columns, error) {
	idx := map[string]int{}
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	var c columns
	for name, dst := range map[string]*int{
		"id":       &c.id,
		"question": &c.question,
		"artist":   &c.artist,
		"song":     &c.song,
	} {
		i, ok := idx[name]
		if !ok {
			return columns{}, fmt.Errorf("catalog header missing %q column", name)
		}
		*dst = i
	}
	return c, nil
}

// parseRecord converts one CSV record. ok is false for comment rows.
func parseRecord(record []string, c columns) (Item, bool, error) {
	get := func(i int) (string, bool) {
		if i >= len(record) {
			return "", false
		}
		return record[i], true
	}

	rawID, ok := get(c.id)
	if !ok {
		return Item{}, false, fmt.Errorf("%w: missing id", ErrMalformedEntry)
	}
	if strings.HasPrefix(rawID, commentPrefix) {
		return Item{}, false, nil
	}

	id, err := strconv.Atoi(strings.TrimSpace(rawID))
	if err != nil {
		return Item{}, false, fmt.Errorf("%w: invalid id %q", ErrMalformedEntry, rawID)
	}
	if id < 1 {
		return Item{}, false, fmt.Errorf("%w: id %d must be positive", ErrMalformedEntry, id)
	}

	question, qok := get(c.question)
	artist, aok := get(c.artist)
	song, sok := get(c.song)
	if !qok || !aok || !sok {
		return Item{}, false, fmt.Errorf("%w: id %d has %d fields, want %d", ErrMalformedEntry, id, len(record), len(Header))
	}
	if strings.TrimSpace(question) == "" {
		return Item{}, false, fmt.Errorf("%w: id %d has an empty question", ErrMalformedEntry, id)
	}

	return Item{
		ID:       id,
		Stimulus: question,
		Answer:   []string{artist, song},
	}, true, nil
}
