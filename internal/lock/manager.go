package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/flock"
)

var (
	// ErrLockTimeout is returned when acquiring a lock times out.
	ErrLockTimeout = errors.New("timeout acquiring lock")
	// ErrFilenameRequired is returned when the file path is empty.
	ErrFilenameRequired = errors.New("filename is required")
	// ErrNilLock is returned when a nil handle is passed to ReleaseLock.
	ErrNilLock = errors.New("nil lock handle")
)

// pollInterval is how often a blocked acquire retries until the timeout.
const pollInterval = 10 * time.Millisecond

// LockManager serializes writers of a file across processes using a
// sibling "<path>.lock" file and OS advisory locks.
type LockManager struct{}

// NewLockManager initializes and returns a new LockManager.
func NewLockManager() *LockManager {
	return &LockManager{}
}

var _ LockManagerInterface = (*LockManager)(nil)

// AcquireLock obtains an exclusive lock for filePath, polling until timeout.
func (lm *LockManager) AcquireLock(filePath string, timeout time.Duration) (*FileLock, error) {
	if filePath == "" {
		return nil, ErrFilenameRequired
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	fl := flock.New(filePath + ".lock")
	locked, err := fl.TryLockContext(ctx, pollInterval)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrLockTimeout
		}
		return nil, fmt.Errorf("error acquiring file lock for %s: %w", filePath, err)
	}
	if !locked {
		return nil, ErrLockTimeout
	}

	return &FileLock{FilePath: filePath, flock: fl}, nil
}

// ReleaseLock releases a lock acquired by AcquireLock.
func (lm *LockManager) ReleaseLock(lock *FileLock) error {
	if lock == nil {
		return ErrNilLock
	}
	if lock.flock == nil {
		return nil
	}
	if err := lock.flock.Unlock(); err != nil {
		return fmt.Errorf("error releasing file lock for %s: %w", lock.FilePath, err)
	}
	return nil
}
