package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileRecorder plays back recordings dropped into a directory, one per Record call.
// Each file is renamed with a .processed suffix once read.
type FileRecorder struct {
	dir      string
	interval time.Duration

	mu        sync.Mutex
	processed map[string]bool
}

func NewFileRecorder(dir string) *FileRecorder {
	return &FileRecorder{
		dir:       dir,
		interval:  200 * time.Millisecond,
		processed: make(map[string]bool),
	}
}

func (f *FileRecorder) Record(ctx context.Context, stop <-chan struct{}, limits Limits) ([]byte, error) {
	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return nil, fmt.Errorf("creating audio dir: %w", err)
	}

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	var deadline <-chan time.Time
	if limits.MaxLength > 0 {
		timer := time.NewTimer(limits.MaxLength)
		defer timer.Stop()
		deadline = timer.C
	}

	for {
		audio, err := f.next()
		if err != nil {
			return nil, err
		}
		if audio != nil {
			return audio, nil
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-stop:
			return nil, ErrNoAudio
		case <-deadline:
			return nil, ErrNoAudio
		case <-ticker.C:
		}
	}
}

func (f *FileRecorder) next() ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("reading dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".wav" {
			continue
		}

		path := filepath.Join(f.dir, entry.Name())
		if f.processed[path] {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading file %s: %w", path, err)
		}

		f.processed[path] = true
		os.Rename(path, path+".processed")

		if len(data) == 0 {
			continue
		}
		return data, nil
	}

	return nil, nil
}
