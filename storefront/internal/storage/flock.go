package storage

import (
	"fmt"
	"os"
	"syscall"
)

// fileLock serialises read-modify-write cycles on the state file across
// processes using flock(2) on a sibling "<state>.lock" file.
type fileLock struct {
	path string
	file *os.File
}

func newFileLock(statePath string) *fileLock {
	return &fileLock{path: statePath + ".lock"}
}

// Lock blocks until the exclusive lock is held.
func (l *fileLock) Lock() error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return fmt.Errorf("open state lock: %w", err)
	}
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX); err != nil {
		f.Close()
		return fmt.Errorf("acquire state lock: %w", err)
	}
	l.file = f
	return nil
}

func (l *fileLock) Unlock() error {
	if l.file == nil {
		return nil
	}
	err := syscall.Flock(int(l.file.Fd()), syscall.LOCK_UN)
	closeErr := l.file.Close()
	l.file = nil
	if err != nil {
		return fmt.Errorf("release state lock: %w", err)
	}
	return closeErr
}
