package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

type fileDocument struct {
	// Writer is the origin of the last process to write the file.
	Writer  string                     `json:"writer"`
	Entries map[string]json.RawMessage `json:"entries"`
}

// FileStorage keeps every key in one JSON file. Writes replace the file
// atomically under an flock(2) held on "<path>.lock", so processes sharing
// the file never lose each other's keys; they learn about changes through
// fsnotify.
type FileStorage struct {
	path   string
	origin string
	log    *slog.Logger
	mu     sync.Mutex
	lock   *fileLock
}

func NewFileStorage(path string, logger *slog.Logger) (*FileStorage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}
	return &FileStorage{path: path, origin: newOrigin(), log: logger, lock: newFileLock(path)}, nil
}

// locked runs fn while holding both the in-process mutex and the
// cross-process file lock.
func (f *FileStorage) locked(fn func() error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.lock.Lock(); err != nil {
		return err
	}
	err := fn()
	if unlockErr := f.lock.Unlock(); err == nil {
		err = unlockErr
	}
	return err
}

func (f *FileStorage) snapshot() (fileDocument, error) {
	var doc fileDocument
	err := f.locked(func() error {
		var err error
		doc, err = f.read()
		return err
	})
	return doc, err
}

func (f *FileStorage) Origin() string { return f.origin }

func (f *FileStorage) Path() string { return f.path }

func (f *FileStorage) read() (fileDocument, error) {
	doc := fileDocument{Entries: map[string]json.RawMessage{}}
	raw, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return doc, fmt.Errorf("read state file: %w", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return doc, fmt.Errorf("decode state file: %w", err)
	}
	if doc.Entries == nil {
		doc.Entries = map[string]json.RawMessage{}
	}
	return doc, nil
}

func (f *FileStorage) write(doc fileDocument) error {
	doc.Writer = f.origin
	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state file: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".state-*")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp state file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}

func (f *FileStorage) Get(_ context.Context, key string) ([]byte, error) {
	doc, err := f.snapshot()
	if err != nil {
		return nil, err
	}
	value, ok := doc.Entries[key]
	if !ok {
		return nil, ErrNotFound
	}
	return []byte(value), nil
}

func (f *FileStorage) Set(_ context.Context, key string, value []byte) error {
	if !json.Valid(value) {
		return fmt.Errorf("set %s: value is not JSON", key)
	}
	return f.locked(func() error {
		doc, err := f.read()
		if err != nil {
			return err
		}
		doc.Entries[key] = json.RawMessage(append([]byte(nil), value...))
		return f.write(doc)
	})
}

func (f *FileStorage) Remove(_ context.Context, key string) error {
	return f.locked(func() error {
		doc, err := f.read()
		if err != nil {
			return err
		}
		if _, ok := doc.Entries[key]; !ok {
			return nil
		}
		delete(doc.Entries, key)
		return f.write(doc)
	})
}

// Watch diffs the file against the last snapshot every time it changes on
// disk and emits one event per changed key.
func (f *FileStorage) Watch(ctx context.Context) (<-chan Event, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(f.path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch state directory: %w", err)
	}

	snapshot, err := f.snapshot()
	if err != nil {
		fw.Close()
		return nil, err
	}

	out := make(chan Event)
	go func() {
		defer close(out)
		defer fw.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				f.log.Warn("state file watcher error", "error", err)
			case ev, ok := <-fw.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != filepath.Clean(f.path) {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
					continue
				}
				current, err := f.snapshot()
				if err != nil {
					f.log.Warn("reload state file", "error", err)
					continue
				}
				for _, change := range diffDocuments(snapshot, current) {
					select {
					case out <- change:
					case <-ctx.Done():
						return
					}
				}
				snapshot = current
			}
		}
	}()
	return out, nil
}

func diffDocuments(before, after fileDocument) []Event {
	var events []Event
	for key, value := range after.Entries {
		if old, ok := before.Entries[key]; !ok || !bytes.Equal(old, value) {
			events = append(events, Event{Key: key, Value: []byte(value), Origin: after.Writer})
		}
	}
	for key := range before.Entries {
		if _, ok := after.Entries[key]; !ok {
			events = append(events, Event{Key: key, Origin: after.Writer})
		}
	}
	return events
}
