package cutoff

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"github.com/sugawarayuuta/sonnet"
	"go.uber.org/zap"
)

// FileStore keeps every size in one JSON object, e.g. {"chess": 2}. The
// whole file is rewritten on each Set.
type FileStore struct {
	path  string
	mu    sync.Mutex
	sizes map[string]int

	logger *zap.SugaredLogger
}

// OpenFileStore loads path, creating its directory and an empty object when
// the file does not exist yet.
func OpenFileStore(path string, logger *zap.Logger) (*FileStore, error) {
	f := &FileStore{
		path:   path,
		sizes:  make(map[string]int),
		logger: logger.Sugar(),
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrapf(err, "cutoff: create dir for %s", path)
	}

	raw, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		if err := f.flush(); err != nil {
			return nil, err
		}
		f.logger.Infof("created cutoff file path[%v]", path)
		return f, nil
	case err != nil:
		return nil, errors.Wrapf(err, "cutoff: read %s", path)
	}

	if len(raw) > 0 {
		if err := sonnet.Unmarshal(raw, &f.sizes); err != nil {
			return nil, errors.Wrapf(err, "cutoff: decode %s", path)
		}
	}
	f.logger.Infof("loaded cutoff file path[%v] games[%v]", path, len(f.sizes))
	return f, nil
}

func (f *FileStore) Get(_ context.Context, game string) (int, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.sizes[game]
	return n, ok, nil
}

func (f *FileStore) Set(_ context.Context, game string, size int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	prev, had := f.sizes[game]
	f.sizes[game] = size
	if err := f.flush(); err != nil {
		if had {
			f.sizes[game] = prev
		} else {
			delete(f.sizes, game)
		}
		return err
	}
	f.logger.Debugf("stored cutoff game[%v] size[%v]", game, size)
	return nil
}

func (f *FileStore) Close() error { return nil }

// flush writes through a temp file so a crash never leaves half a document.
// Caller holds f.mu (or owns f exclusively).
func (f *FileStore) flush() error {
	raw, err := sonnet.Marshal(f.sizes)
	if err != nil {
		return errors.Wrap(err, "cutoff: encode")
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return errors.Wrapf(err, "cutoff: write %s", tmp)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return errors.Wrapf(err, "cutoff: replace %s", f.path)
	}
	return nil
}
