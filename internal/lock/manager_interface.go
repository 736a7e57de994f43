package lock

import (
	"time"

	"github.com/gofrs/flock"
)

// FileLock is a handle to an OS-level file lock. It is returned by
// AcquireLock and must be passed back to ReleaseLock.
type FileLock struct {
	FilePath string
	flock    *flock.Flock
}

// LockManagerInterface is implemented by lock managers. Services depend on
// this interface so tests can substitute an in-memory implementation.
type LockManagerInterface interface {
	AcquireLock(filePath string, timeout time.Duration) (*FileLock, error)
	ReleaseLock(lock *FileLock) error
}
