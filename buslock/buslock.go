// Package buslock serializes access to a shared RS-485 line across
// processes with an advisory flock(2) on a well-known file.
//
// Every program talking to meters on the same line must use the same
// path. The file is created world-writable so processes of different
// users can share it, and it is never removed by Unlock.
package buslock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/thinkgos/mercury236"
)

const (
	// DefaultName name of the lock shared by all meter programs
	DefaultName = "MERCURY_RS485"
	// DefaultPerm access permissions of the lock file
	DefaultPerm = 0666
	// DefaultRetry interval between attempts while the lock is held elsewhere
	DefaultRetry = 10 * time.Millisecond
)

// ErrHeld the Lock is already held by this value.
var ErrHeld = errors.New("buslock: already held")

// DefaultPath returns the well-known lock path, under /dev/shm when
// available like POSIX named semaphores, else under the temp dir.
func DefaultPath() string {
	if fi, err := os.Stat("/dev/shm"); err == nil && fi.IsDir() {
		return filepath.Join("/dev/shm", DefaultName)
	}
	return filepath.Join(os.TempDir(), DefaultName)
}

// Lock is a named cross-process lock. It implements mercury.Locker.
// Two Lock values on the same path exclude each other even inside one
// process.
type Lock struct {
	path  string
	retry time.Duration

	mu sync.Mutex
	f  *os.File
}

var _ mercury.Locker = (*Lock)(nil)

// Option lock option.
type Option func(l *Lock)

// WithRetry set the polling interval while waiting for the lock.
func WithRetry(d time.Duration) Option {
	return func(l *Lock) {
		if d > 0 {
			l.retry = d
		}
	}
}

// New returns a Lock on path, DefaultPath() if path is empty. Nothing is
// opened until Lock.
func New(path string, opts ...Option) *Lock {
	if path == "" {
		path = DefaultPath()
	}
	l := &Lock{
		path:  path,
		retry: DefaultRetry,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Path returns the lock file path.
func (l *Lock) Path() string { return l.path }

// Lock blocks until the lock is acquired or ctx is done. A done ctx is
// reported as mercury.ErrLockUnavailable.
func (l *Lock) Lock(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f != nil {
		return ErrHeld
	}

	f, err := open(l.path)
	if err != nil {
		return fmt.Errorf("%w: %w", mercury.ErrLockUnavailable, err)
	}
	for {
		err = unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB)
		if err == nil {
			l.f = f
			return nil
		}
		if !errors.Is(err, unix.EWOULDBLOCK) && !errors.Is(err, unix.EINTR) {
			f.Close()
			return fmt.Errorf("%w: flock %s: %w", mercury.ErrLockUnavailable, l.path, err)
		}
		select {
		case <-ctx.Done():
			f.Close()
			return fmt.Errorf("%w: %w", mercury.ErrLockUnavailable, ctx.Err())
		case <-time.After(l.retry):
		}
	}
}

// TryLock acquires the lock without waiting. It reports false if the lock
// is held elsewhere.
func (l *Lock) TryLock() (bool, error) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := l.Lock(ctx)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, context.Canceled):
		return false, nil
	}
	return false, err
}

// Unlock releases the lock.
func (l *Lock) Unlock() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f == nil {
		return nil
	}
	err := unix.Flock(int(l.f.Fd()), unix.LOCK_UN)
	if cerr := l.f.Close(); err == nil {
		err = cerr
	}
	l.f = nil
	return err
}

// Remove unlinks the lock file at path. Only for cleanup when no program
// uses the line any more.
func Remove(path string) error {
	if path == "" {
		path = DefaultPath()
	}
	err := unix.Unlink(path)
	if errors.Is(err, unix.ENOENT) {
		return nil
	}
	return err
}

// open creates path with DefaultPerm regardless of the process umask.
func open(path string) (*os.File, error) {
	prev := unix.Umask(0)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, DefaultPerm)
	unix.Umask(prev)
	return f, err
}
