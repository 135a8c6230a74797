package fsdriver

import (
	"errors"
	"syscall"

	"github.com/ufabc-bcc/risosfs/internal/storage"
)

// toErrno maps a storage error onto the syscall.Errno go-fuse expects as a
// Status. ErrInvalidParent and ErrNotAChild are argument-validation failures
// at the storage boundary, not invariant violations, so they fall into the
// same generic IO bucket as the rest of the taxonomy rather than panicking.
func toErrno(err error) syscall.Errno {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, storage.ErrNotFound):
		return syscall.ENOENT
	case errors.Is(err, storage.ErrNoSpace):
		return syscall.ENOSPC
	case errors.Is(err, storage.ErrIsDirectory):
		return syscall.EISDIR
	case errors.Is(err, storage.ErrNotSupported):
		return syscall.ENOSYS
	case errors.Is(err, storage.ErrOversize):
		return syscall.EFBIG
	case errors.Is(err, storage.ErrNameTooLong):
		return syscall.ENAMETOOLONG
	case errors.Is(err, storage.ErrIO),
		errors.Is(err, storage.ErrInvalidParent),
		errors.Is(err, storage.ErrNotAChild):
		return syscall.EIO
	default:
		return syscall.EIO
	}
}
