package index

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/sejong-careerpath/coursebot-go/internal/catalog"
)

// Version identifies the snapshot layout. Bump it whenever the
// tokenizer or the index structure changes so persisted snapshots from
// older builds are discarded instead of silently serving stale keys.
const Version = 1

var (
	// ErrSnapshotStale reports a snapshot written by a different
	// Version. The caller should rebuild from the catalog.
	ErrSnapshotStale = errors.New("index snapshot version stale")

	// ErrSnapshotCorrupt reports a snapshot that cannot be parsed.
	// The caller should discard it and rebuild from the catalog.
	ErrSnapshotCorrupt = errors.New("index snapshot corrupt")
)

// snapshotEntry is one (key, records) pair, serialized as a two-element
// JSON array so the map round-trips without key-ordering surprises.
type snapshotEntry struct {
	Key     string
	Records []catalog.CourseRecord
}

func (e snapshotEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{e.Key, e.Records})
}

func (e *snapshotEntry) UnmarshalJSON(data []byte) error {
	var pair [2]json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if err := json.Unmarshal(pair[0], &e.Key); err != nil {
		return err
	}
	return json.Unmarshal(pair[1], &e.Records)
}

type snapshotFile struct {
	Version   int             `json:"version"`
	Name      []snapshotEntry `json:"name"`
	Professor []snapshotEntry `json:"professor"`
	Type      []snapshotEntry `json:"type"`
	Day       []snapshotEntry `json:"day"`
	Code      []snapshotEntry `json:"code"`
}

func toEntries(m map[string][]catalog.CourseRecord) []snapshotEntry {
	entries := make([]snapshotEntry, 0, len(m))
	for key, records := range m {
		entries = append(entries, snapshotEntry{Key: key, Records: records})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries
}

func fromEntries(entries []snapshotEntry) map[string][]catalog.CourseRecord {
	m := make(map[string][]catalog.CourseRecord, len(entries))
	for _, entry := range entries {
		m[entry.Key] = entry.Records
	}
	return m
}

// Encode serializes the index with its version tag. Keys are sorted so
// the payload is byte-stable for identical indices.
func Encode(ix *Index) ([]byte, error) {
	payload, err := json.Marshal(snapshotFile{
		Version:   Version,
		Name:      toEntries(ix.Name),
		Professor: toEntries(ix.Professor),
		Type:      toEntries(ix.Type),
		Day:       toEntries(ix.Day),
		Code:      toEntries(ix.Code),
	})
	if err != nil {
		return nil, fmt.Errorf("encode index snapshot: %w", err)
	}
	return payload, nil
}

// Decode reconstructs an index from a snapshot payload. It returns
// ErrSnapshotStale when the payload was written by a different Version
// and ErrSnapshotCorrupt when the payload does not parse; either way
// the caller rebuilds from the catalog.
func Decode(payload []byte) (*Index, error) {
	var file snapshotFile
	if err := json.Unmarshal(payload, &file); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSnapshotCorrupt, err)
	}
	if file.Version != Version {
		return nil, fmt.Errorf("%w: snapshot version %d, current %d", ErrSnapshotStale, file.Version, Version)
	}
	return &Index{
		Name:      fromEntries(file.Name),
		Professor: fromEntries(file.Professor),
		Type:      fromEntries(file.Type),
		Day:       fromEntries(file.Day),
		Code:      fromEntries(file.Code),
	}, nil
}
