package batch

import (
	"encoding/json"
	"fmt"

	"github.com/sklopivo/sklopivo.github.io/internal/fsutil"
	"github.com/sklopivo/sklopivo.github.io/internal/monitoring"
)

// MalformedInputError reports an input file that is not a JSON array of
// batch objects. It is the only fatal parse condition; individually
// incomplete batches are never an error.
type MalformedInputError struct {
	Path string
	Err  error
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("malformed batch input %s: %v", e.Path, e.Err)
}

func (e *MalformedInputError) Unwrap() error { return e.Err }

// ReadFile loads a JSON array of batch records from path. Batches with
// missing fields load fine; duplicate or missing IDs are logged but do not
// abort the run.
func ReadFile(fsys fsutil.FileSystem, path string) ([]Batch, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch input %s: %w", path, err)
	}

	batches, err := DecodeList(data)
	if err != nil {
		return nil, &MalformedInputError{Path: path, Err: err}
	}

	seen := make(map[string]bool, len(batches))
	for i := range batches {
		id := batches[i].ID
		if id == "" {
			monitoring.Logf("batch %d (%q) has no id", i, batches[i].Name)
			continue
		}
		if seen[id] {
			monitoring.Logf("duplicate batch id %s", id)
		}
		seen[id] = true
	}
	return batches, nil
}

// DecodeList parses a JSON array of batch objects. It returns an error when
// the document is not an array or any element is not an object.
func DecodeList(data []byte) ([]Batch, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("input is not a JSON array: %w", err)
	}

	batches := make([]Batch, 0, len(raw))
	for i, msg := range raw {
		var b Batch
		if err := json.Unmarshal(msg, &b); err != nil {
			return nil, fmt.Errorf("element %d is not a batch object: %w", i, err)
		}
		batches = append(batches, b)
	}
	return batches, nil
}
