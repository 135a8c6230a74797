package storage

import "errors"

// Package-specific error variables that can be used with errors.Is() for
// error handling. These are the storage-engine-facing taxonomy; the
// filesystem operation layer maps each of them onto a syscall.Errno.
var (
	// ErrNotFound is returned when an inode or directory entry does not exist.
	ErrNotFound = errors.New("risosfs: inode or entry not found")

	// ErrIO is returned for generic failures: a full directory reference
	// array, or an unlink/rmdir target that does not exist.
	ErrIO = errors.New("risosfs: io error")

	// ErrNoSpace is returned when the inode pool or the data pool is
	// exhausted.
	ErrNoSpace = errors.New("risosfs: no space left on device")

	// ErrIsDirectory is returned when unlink is attempted on a directory.
	ErrIsDirectory = errors.New("risosfs: is a directory")

	// ErrNotSupported is returned for operations this engine never
	// implements, such as fsync.
	ErrNotSupported = errors.New("risosfs: operation not supported")

	// ErrInvalidParent is returned when a parent inode number does not name
	// an occupied directory slot.
	ErrInvalidParent = errors.New("risosfs: invalid parent inode")

	// ErrNotAChild is returned when clearing a reference that does not
	// exist in the parent's reference array.
	ErrNotAChild = errors.New("risosfs: not a child of parent")

	// ErrOversize is returned (hard) when content exceeds the block size.
	ErrOversize = errors.New("risosfs: content exceeds block size")

	// ErrCorruptSnapshot is returned when a non-empty sidecar file fails to
	// decode during construction.
	ErrCorruptSnapshot = errors.New("risosfs: corrupt snapshot")

	// ErrTooSmall is returned when the loaded data pool has more entries
	// than the requested memory size allows.
	ErrTooSmall = errors.New("risosfs: requested disk smaller than persisted snapshot")

	// ErrNameTooLong is returned when a create/mkdir name does not fit in
	// the fixed 64-byte name array. Left implicit in the original source;
	// this engine rejects it explicitly instead of silently truncating.
	ErrNameTooLong = errors.New("risosfs: name exceeds 64 bytes")
)
