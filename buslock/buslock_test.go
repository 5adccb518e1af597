package buslock

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/thinkgos/mercury236"
)

func TestLock_Exclusion(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultName)
	a, b := New(path), New(path)

	if err := a.Lock(context.Background()); err != nil {
		t.Fatalf("a.Lock() error = %v", err)
	}
	ok, err := b.TryLock()
	if err != nil || ok {
		t.Fatalf("b.TryLock() = %v, %v, want false, nil", ok, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	err = b.Lock(ctx)
	if !errors.Is(err, mercury.ErrLockUnavailable) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("b.Lock() error = %v, want %v", err, mercury.ErrLockUnavailable)
	}
	if mercury.Code(err) != mercury.LockUnavailable {
		t.Errorf("Code() = %v, want %v", mercury.Code(err), mercury.LockUnavailable)
	}

	if err = a.Unlock(); err != nil {
		t.Fatalf("a.Unlock() error = %v", err)
	}
	if ok, err = b.TryLock(); err != nil || !ok {
		t.Fatalf("b.TryLock() after unlock = %v, %v, want true, nil", ok, err)
	}
	if err = b.Lock(context.Background()); !errors.Is(err, ErrHeld) {
		t.Errorf("b.Lock() while held error = %v, want %v", err, ErrHeld)
	}
	if err = b.Unlock(); err != nil {
		t.Errorf("b.Unlock() error = %v", err)
	}
	if err = b.Unlock(); err != nil {
		t.Errorf("second Unlock() error = %v", err)
	}
}

func TestLock_NoOverlap(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultName)

	type span struct{ start, end time.Time }
	var (
		mu    sync.Mutex
		spans []span
		wg    sync.WaitGroup
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l := New(path, WithRetry(time.Millisecond))
			for j := 0; j < 5; j++ {
				if err := l.Lock(context.Background()); err != nil {
					t.Error(err)
					return
				}
				s := span{start: time.Now()}
				time.Sleep(2 * time.Millisecond)
				s.end = time.Now()
				if err := l.Unlock(); err != nil {
					t.Error(err)
				}
				mu.Lock()
				spans = append(spans, s)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	for i := range spans {
		for j := range spans {
			if i == j {
				continue
			}
			if spans[i].start.Before(spans[j].end) && spans[j].start.Before(spans[i].end) {
				t.Fatalf("critical sections overlap: %v and %v", spans[i], spans[j])
			}
		}
	}
}

func TestLock_FilePerm(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultName)
	l := New(path)
	if err := l.Lock(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer l.Unlock()

	fi, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := fi.Mode().Perm(); got != DefaultPerm {
		t.Errorf("lock file mode = %o, want %o", got, DefaultPerm)
	}
}

func TestRemove(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultName)
	if err := Remove(path); err != nil {
		t.Errorf("Remove() missing file error = %v", err)
	}
	l := New(path)
	if err := l.Lock(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := l.Unlock(); err != nil {
		t.Fatal(err)
	}
	if err := Remove(path); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("Stat() error = %v, want not exist", err)
	}
}

func TestNew_DefaultPath(t *testing.T) {
	if got := New("").Path(); got != DefaultPath() {
		t.Errorf("Path() = %v, want %v", got, DefaultPath())
	}
}
