package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ErrInvalidUser is returned for user names that cannot name a progress record.
var ErrInvalidUser = errors.New("invalid user name")

var userPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// ValidateUser checks that user is usable as a record key and file name part.
func ValidateUser(user string) error {
	if !userPattern.MatchString(user) {
		return fmt.Errorf("%w: %q", ErrInvalidUser, user)
	}
	return nil
}

// record is the on-disk shape of a user's progress file.
type record struct {
	Username  string         `json:"username"`
	Knowledge map[string]int `json:"knowledge"`
}

// recordSchema constrains progress files: knowledge keys are item ids and
// values are non-negative streaks.
const recordSchema = `{
	"type": "object",
	"required": ["knowledge"],
	"properties": {
		"username": {"type": "string"},
		"knowledge": {
			"type": "object",
			"propertyNames": {"pattern": "^[0-9]+$"},
			"additionalProperties": {"type": "integer", "minimum": 0}
		}
	}
}`

var compiledRecordSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	var def any
	if err := json.Unmarshal([]byte(recordSchema), &def); err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}
	c := jsonschema.NewCompiler()
	const url = "schema://progress-record.json"
	if err := c.AddResource(url, def); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	return c.Compile(url)
})

// FileBackend stores each user's progress as user_<name>.json in a directory.
type FileBackend struct {
	dir string
}

var _ Backend = (*FileBackend)(nil)

// NewFileBackend creates a backend rooted at dir.
func NewFileBackend(dir string) *FileBackend {
	return &FileBackend{dir: dir}
}

// Path returns the progress file path for user.
func (b *FileBackend) Path(user string) string {
	return filepath.Join(b.dir, "user_"+user+".json")
}

func (b *FileBackend) Load(_ context.Context, user string) (map[int]int, error) {
	if err := ValidateUser(user); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(b.Path(user))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[int]int{}, nil
		}
		return nil, fmt.Errorf("read progress file: %w", err)
	}
	return decodeRecord(raw)
}

func (b *FileBackend) Save(_ context.Context, user string, streaks map[int]int) error {
	if err := ValidateUser(user); err != nil {
		return err
	}

	rec := record{Username: user, Knowledge: make(map[string]int, len(streaks))}
	for id, s := range streaks {
		rec.Knowledge[strconv.Itoa(id)] = s
	}
	data, err := json.MarshalIndent(rec, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal progress: %w", err)
	}

	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return fmt.Errorf("create progress dir: %w", err)
	}
	tmp, err := os.CreateTemp(b.dir, ".user-*.json")
	if err != nil {
		return fmt.Errorf("create temp progress file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write progress file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync progress file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close progress file: %w", err)
	}
	if err := os.Rename(tmpName, b.Path(user)); err != nil {
		return fmt.Errorf("replace progress file: %w", err)
	}
	return nil
}

// decodeRecord validates raw against the record schema and converts it.
func decodeRecord(raw []byte) (map[int]int, error) {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("invalid progress JSON: %w", err)
	}

	schema, err := compiledRecordSchema()
	if err != nil {
		return nil, fmt.Errorf("compile progress schema: %w", err)
	}
	if err := schema.Validate(parsed); err != nil {
		return nil, fmt.Errorf("progress file failed validation: %w", err)
	}

	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode progress: %w", err)
	}

	streaks := make(map[int]int, len(rec.Knowledge))
	for key, s := range rec.Knowledge {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("decode progress: item id %q: %w", key, err)
		}
		streaks[id] = s
	}
	return streaks, nil
}
