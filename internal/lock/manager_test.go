package lock

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func tempTarget(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.txt")
	if err := os.WriteFile(path, []byte("content"), 0644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return path
}

func TestAcquireLock_EmptyFilename(t *testing.T) {
	lm := NewLockManager()
	lock, err := lm.AcquireLock("", time.Second)
	if !errors.Is(err, ErrFilenameRequired) {
		t.Errorf("AcquireLock(\"\") error = %v, want ErrFilenameRequired", err)
	}
	if lock != nil {
		t.Error("AcquireLock(\"\") returned a non-nil handle")
	}
}

func TestAcquireLock_CreatesLockFile(t *testing.T) {
	lm := NewLockManager()
	path := tempTarget(t)

	lock, err := lm.AcquireLock(path, time.Second)
	if err != nil {
		t.Fatalf("AcquireLock() error = %v", err)
	}
	defer func() { _ = lm.ReleaseLock(lock) }()

	if lock.FilePath != path {
		t.Errorf("FilePath = %q, want %q", lock.FilePath, path)
	}
	if _, err := os.Stat(path + ".lock"); err != nil {
		t.Errorf("lock file missing: %v", err)
	}
}

func TestAcquireLock_SecondAcquireTimesOut(t *testing.T) {
	lm := NewLockManager()
	path := tempTarget(t)

	first, err := lm.AcquireLock(path, time.Second)
	if err != nil {
		t.Fatalf("first AcquireLock() error = %v", err)
	}
	defer func() { _ = lm.ReleaseLock(first) }()

	start := time.Now()
	second, err := lm.AcquireLock(path, 100*time.Millisecond)
	if !errors.Is(err, ErrLockTimeout) {
		t.Fatalf("second AcquireLock() error = %v, want ErrLockTimeout", err)
	}
	if second != nil {
		t.Error("second AcquireLock() returned a non-nil handle")
	}
	if elapsed := time.Since(start); elapsed < 100*time.Millisecond {
		t.Errorf("timed out after %v, before the requested timeout", elapsed)
	}
}

func TestReleaseLock_AllowsReacquire(t *testing.T) {
	lm := NewLockManager()
	path := tempTarget(t)

	lock, err := lm.AcquireLock(path, time.Second)
	if err != nil {
		t.Fatalf("AcquireLock() error = %v", err)
	}
	if err := lm.ReleaseLock(lock); err != nil {
		t.Fatalf("ReleaseLock() error = %v", err)
	}

	again, err := lm.AcquireLock(path, 100*time.Millisecond)
	if err != nil {
		t.Fatalf("re-acquire after release failed: %v", err)
	}
	_ = lm.ReleaseLock(again)
}

func TestAcquireLock_WaitsForHolder(t *testing.T) {
	lm := NewLockManager()
	path := tempTarget(t)

	holder, err := lm.AcquireLock(path, time.Second)
	if err != nil {
		t.Fatalf("AcquireLock() error = %v", err)
	}

	released := make(chan struct{})
	go func() {
		time.Sleep(50 * time.Millisecond)
		_ = lm.ReleaseLock(holder)
		close(released)
	}()

	waited, err := lm.AcquireLock(path, 2*time.Second)
	if err != nil {
		t.Fatalf("waiting AcquireLock() error = %v", err)
	}
	<-released
	_ = lm.ReleaseLock(waited)
}

func TestReleaseLock_NilHandle(t *testing.T) {
	lm := NewLockManager()
	if err := lm.ReleaseLock(nil); !errors.Is(err, ErrNilLock) {
		t.Errorf("ReleaseLock(nil) error = %v, want ErrNilLock", err)
	}
}

func TestReleaseLock_ZeroValueHandle(t *testing.T) {
	lm := NewLockManager()
	if err := lm.ReleaseLock(&FileLock{FilePath: "x"}); err != nil {
		t.Errorf("ReleaseLock(zero handle) error = %v, want nil", err)
	}
}
