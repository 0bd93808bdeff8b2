package sink

import (
	"os"
	"path/filepath"
	"time"
)

// FileLock provides advisory file locking so two runs never append to the
// same output at once. The lock file lives next to the output as path + ".lock".
type FileLock struct {
	path string
	file *os.File
}

// NewFileLock creates a file lock. The lock is not acquired until Lock() is called.
func NewFileLock(path string) *FileLock {
	return &FileLock{path: path + ".lock"}
}

// Path returns the lock file path.
func (l *FileLock) Path() string {
	return l.path
}

// Lock acquires an exclusive lock, polling until timeout.
// Returns ErrLockHeld if another holder keeps the lock past the timeout.
func (l *FileLock) Lock(timeout time.Duration) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return &SinkError{Op: "lock", Path: l.path, Err: err}
	}

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return &SinkError{Op: "lock", Path: l.path, Err: err}
	}

	deadline := time.Now().Add(timeout)
	for {
		if err := lockFile(f); err == nil {
			l.file = f
			return nil
		}
		if !time.Now().Before(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	f.Close()
	return &SinkError{Op: "lock", Path: l.path, Err: ErrLockHeld}
}

// Unlock releases the lock. The lock file itself is left in place.
func (l *FileLock) Unlock() error {
	if l.file == nil {
		return nil
	}
	unlockFile(l.file)
	err := l.file.Close()
	l.file = nil
	return err
}
