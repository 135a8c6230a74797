package storage

import "github.com/ufabc-bcc/risosfs/internal/serialization"

// Kind is the file type recorded on an inode. Only KindDirectory and
// KindRegularFile are ever produced by this engine; the others exist so the
// attribute encoding has a stable discriminant for kinds this system never
// creates but a caller might legitimately query about (see spec kind enum).
type Kind uint16

const (
	KindNamedPipe Kind = iota + 1
	KindCharDevice
	KindBlockDevice
	KindDirectory
	KindRegularFile
	KindSymlink
	KindSocket
)

// Timespec is a (seconds, nanoseconds) timestamp pair.
type Timespec struct {
	Sec  int64
	Nsec int32
}

// Attr holds the attributes of one inode.
type Attr struct {
	Ino    uint32
	Size   uint64
	Blocks uint64
	Atime  Timespec
	Mtime  Timespec
	Ctime  Timespec
	Crtime Timespec
	Kind   Kind
	Perm   uint16
	Nlink  uint32
	Uid    uint32
	Gid    uint32
	Rdev   uint32
	Flags  uint32
}

// Inode is one superblock slot: a fixed-length name, the attributes, and a
// fixed-length array of child references (meaningful only when Kind is
// KindDirectory). Refs entries are inode numbers; 0 means empty, since inode
// numbers are 1-based.
type Inode struct {
	Name [serialization.NameLen]byte
	Attr Attr
	Refs [serialization.RefLen]uint32
}

// MemoryBlock is one data pool slot: Present is false for a free block.
type MemoryBlock struct {
	Present bool
	Data    []byte
}

func toSerTimespec(t Timespec) serialization.Timespec {
	return serialization.Timespec{Sec: t.Sec, Nsec: t.Nsec}
}

func fromSerTimespec(t serialization.Timespec) Timespec {
	return Timespec{Sec: t.Sec, Nsec: t.Nsec}
}

func toSerAttr(a Attr) serialization.Attr {
	return serialization.Attr{
		Ino:    uint64(a.Ino),
		Size:   a.Size,
		Blocks: a.Blocks,
		Atime:  toSerTimespec(a.Atime),
		Mtime:  toSerTimespec(a.Mtime),
		Ctime:  toSerTimespec(a.Ctime),
		Crtime: toSerTimespec(a.Crtime),
		Kind:   uint16(a.Kind),
		Perm:   a.Perm,
		Nlink:  a.Nlink,
		Uid:    a.Uid,
		Gid:    a.Gid,
		Rdev:   a.Rdev,
		Flags:  a.Flags,
	}
}

func fromSerAttr(a serialization.Attr) Attr {
	return Attr{
		Ino:    uint32(a.Ino),
		Size:   a.Size,
		Blocks: a.Blocks,
		Atime:  fromSerTimespec(a.Atime),
		Mtime:  fromSerTimespec(a.Mtime),
		Ctime:  fromSerTimespec(a.Ctime),
		Crtime: fromSerTimespec(a.Crtime),
		Kind:   Kind(a.Kind),
		Perm:   a.Perm,
		Nlink:  a.Nlink,
		Uid:    a.Uid,
		Gid:    a.Gid,
		Rdev:   a.Rdev,
		Flags:  a.Flags,
	}
}

func toSerInode(ino Inode, present bool) serialization.Inode {
	var s serialization.Inode
	s.Present = present
	s.Name = ino.Name
	s.Attr = toSerAttr(ino.Attr)
	s.Refs = ino.Refs
	return s
}

func fromSerInode(s serialization.Inode) Inode {
	return Inode{
		Name: s.Name,
		Attr: fromSerAttr(s.Attr),
		Refs: s.Refs,
	}
}
