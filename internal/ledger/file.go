package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/dmitrijs2005/pointsfarmer/internal/filex"
)

// FileStore keeps the snapshot as a JSON object on disk, replaced via a
// temp-file rename so a crash mid-save never leaves an unreadable file.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (f *FileStore) Load(_ context.Context) (Snapshot, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Snapshot{}, nil
		}
		return nil, fmt.Errorf("read ledger %s: %w", f.path, err)
	}

	s := Snapshot{}
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse ledger %s: %w", f.path, err)
	}

	return s, nil
}

func (f *FileStore) Save(_ context.Context, s Snapshot) error {
	data, err := json.MarshalIndent(s, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}

	if err := filex.WriteFileAtomic(f.path, data, 0o600); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}

	return nil
}
