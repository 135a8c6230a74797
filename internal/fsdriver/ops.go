// Package fsdriver is the Filesystem Operation Layer: it translates the
// operation catalogue of RisosFS into calls against internal/storage, and
// separately adapts that catalogue onto the go-fuse/v2 node interfaces. The
// two concerns are split the way the teacher splits inode.go (pure domain
// logic, no FUSE types) from inode_fuse.go (the thin FUSE-facing glue): the
// functions in this file take and return storage/domain types only, so they
// can be driven directly from tests without a mounted filesystem.
package fsdriver

import (
	"strings"
	"time"

	"github.com/ufabc-bcc/risosfs/internal/storage"
)

// DirEntry is one entry yielded by ReadDir.
type DirEntry struct {
	Ino  uint32
	Name string
	Kind storage.Kind
}

func now() storage.Timespec {
	n := time.Now()
	return storage.Timespec{Sec: n.Unix(), Nsec: int32(n.Nanosecond())}
}

func nameFits(name string) bool {
	return len(name) <= 64
}

// decodeName mirrors storage's own NUL-trimming so directory listings match
// what FindChildByName considers equal.
func decodeName(raw [64]byte) string {
	n := len(raw)
	for n > 0 && raw[n-1] == 0 {
		n--
	}
	return strings.TrimSpace(string(raw[:n]))
}

// Lookup finds a child of parent by name.
func Lookup(e *storage.Engine, parent uint32, name string) (storage.Inode, error) {
	child, ok, err := e.FindChildByName(parent, name)
	if err != nil {
		return storage.Inode{}, err
	}
	if !ok {
		return storage.Inode{}, storage.ErrNotFound
	}
	return child, nil
}

// GetAttr returns the attributes of ino.
func GetAttr(e *storage.Engine, ino uint32) (storage.Inode, error) {
	inode, ok := e.GetInode(ino)
	if !ok {
		return storage.Inode{}, storage.ErrNotFound
	}
	return inode, nil
}

// AttrUpdate carries the subset of fields setattr may overwrite. A nil
// pointer means the field was not supplied by the caller. Mode and
// file-handle hints are deliberately absent: spec §4.3 has setattr ignore
// them.
type AttrUpdate struct {
	Size   *uint64
	Atime  *storage.Timespec
	Mtime  *storage.Timespec
	Crtime *storage.Timespec
	Uid    *uint32
	Gid    *uint32
	Flags  *uint32
}

// SetAttr overwrites the provided fields of ino's attributes and returns the
// updated inode.
func SetAttr(e *storage.Engine, ino uint32, upd AttrUpdate) (storage.Inode, error) {
	inode, ok := e.GetInode(ino)
	if !ok {
		return storage.Inode{}, storage.ErrNotFound
	}
	if upd.Size != nil {
		inode.Attr.Size = *upd.Size
	}
	if upd.Atime != nil {
		inode.Attr.Atime = *upd.Atime
	}
	if upd.Mtime != nil {
		inode.Attr.Mtime = *upd.Mtime
	}
	if upd.Crtime != nil {
		inode.Attr.Crtime = *upd.Crtime
	}
	if upd.Uid != nil {
		inode.Attr.Uid = *upd.Uid
	}
	if upd.Gid != nil {
		inode.Attr.Gid = *upd.Gid
	}
	if upd.Flags != nil {
		inode.Attr.Flags = *upd.Flags
	}
	if err := e.WriteInode(inode); err != nil {
		return storage.Inode{}, err
	}
	return inode, nil
}

// Open succeeds with handle = ino if the inode exists. The handle carries no
// state of its own.
func Open(e *storage.Engine, ino uint32) (uint32, error) {
	if _, ok := e.GetInode(ino); !ok {
		return 0, storage.ErrNotSupported
	}
	return ino, nil
}

// Create reserves a reference slot in parent, an inode number, and that
// inode number's data block, then installs a RegularFile inode named name.
// Any reservation already made is released before returning an error, so
// invariants 1 and 2 hold even on a partial failure.
func Create(e *storage.Engine, parent uint32, name string, perm uint16, uid, gid uint32) (storage.Inode, error) {
	if !nameFits(name) {
		return storage.Inode{}, storage.ErrNameTooLong
	}

	refIdx, ok, err := e.FindEmptyReference(parent)
	if err != nil {
		return storage.Inode{}, err
	}
	if !ok {
		return storage.Inode{}, storage.ErrIO
	}

	ino, ok := e.FindInoAvailable()
	if !ok {
		return storage.Inode{}, storage.ErrNoSpace
	}

	// The content of a regular file with inode ino always lives at block
	// index ino-1 (spec §9, "single-block files"); FindEmptyBlock
	// only confirms the pool still has room, since directories never consume
	// a block and so the two allocators do not always agree on which index
	// is smallest-free.
	if _, ok := e.FindEmptyBlock(); !ok {
		return storage.Inode{}, storage.ErrNoSpace
	}
	blockIdx := int(ino) - 1

	t := now()
	var inode storage.Inode
	copy(inode.Name[:], name)
	inode.Attr = storage.Attr{
		Ino:    ino,
		Size:   0,
		Blocks: 1,
		Atime:  t,
		Mtime:  t,
		Ctime:  t,
		Crtime: t,
		Kind:   storage.KindRegularFile,
		Perm:   perm,
		Nlink:  1,
		Uid:    uid,
		Gid:    gid,
	}

	if err := e.WriteInode(inode); err != nil {
		return storage.Inode{}, err
	}
	if err := e.WriteContent(blockIdx, nil); err != nil {
		e.ClearInode(ino)
		return storage.Inode{}, err
	}
	if err := e.WriteReference(parent, refIdx, ino); err != nil {
		e.ClearInode(ino)
		e.ClearBlock(blockIdx)
		return storage.Inode{}, err
	}

	return inode, nil
}

// Mkdir is Create's directory counterpart: no data block is allocated, and
// the new directory's references start all empty. "." and ".." are not
// stored; ReadDir synthesizes them for the root only, per spec §4.3.
func Mkdir(e *storage.Engine, parent uint32, name string, perm uint16, uid, gid uint32) (storage.Inode, error) {
	if !nameFits(name) {
		return storage.Inode{}, storage.ErrNameTooLong
	}

	refIdx, ok, err := e.FindEmptyReference(parent)
	if err != nil {
		return storage.Inode{}, err
	}
	if !ok {
		return storage.Inode{}, storage.ErrIO
	}

	ino, ok := e.FindInoAvailable()
	if !ok {
		return storage.Inode{}, storage.ErrNoSpace
	}

	t := now()
	var inode storage.Inode
	copy(inode.Name[:], name)
	inode.Attr = storage.Attr{
		Ino:    ino,
		Size:   0,
		Blocks: 0,
		Atime:  t,
		Mtime:  t,
		Ctime:  t,
		Crtime: t,
		Kind:   storage.KindDirectory,
		Perm:   perm,
		Nlink:  1,
		Uid:    uid,
		Gid:    gid,
	}

	if err := e.WriteInode(inode); err != nil {
		return storage.Inode{}, err
	}
	if err := e.WriteReference(parent, refIdx, ino); err != nil {
		e.ClearInode(ino)
		return storage.Inode{}, err
	}

	return inode, nil
}

// Write replaces the entire content of ino's data block with data, ignoring
// offset: every write is a full replacement (spec §4.3, single-block model).
func Write(e *storage.Engine, ino uint32, data []byte) (int, error) {
	inode, ok := e.GetInode(ino)
	if !ok {
		return 0, storage.ErrNotFound
	}

	blockIdx := int(ino) - 1
	if err := e.WriteContent(blockIdx, data); err != nil {
		return 0, err
	}

	inode.Attr.Size = uint64(len(data))
	if err := e.WriteInode(inode); err != nil {
		return 0, err
	}

	return len(data), nil
}

// Read returns the entire content of ino's data block, ignoring offset and
// size (spec §4.3, single-block model).
func Read(e *storage.Engine, ino uint32) ([]byte, error) {
	blockIdx := int(ino) - 1
	data, ok := e.GetContent(blockIdx)
	if !ok {
		return nil, storage.ErrIO
	}
	return data, nil
}

// ReadDir lists a directory's entries. For the root directory it first
// synthesizes "." and ".." (spec §4.3); the root never appears among its own
// children.
func ReadDir(e *storage.Engine, ino uint32) ([]DirEntry, error) {
	dir, ok := e.GetInode(ino)
	if !ok {
		return nil, storage.ErrNotFound
	}

	var out []DirEntry
	if ino == storage.RootIno {
		out = append(out,
			DirEntry{Ino: storage.RootIno, Name: ".", Kind: storage.KindDirectory},
			DirEntry{Ino: storage.RootIno, Name: "..", Kind: storage.KindDirectory},
		)
	}

	for _, child := range dir.Refs {
		if child == 0 || child == storage.RootIno {
			continue
		}
		childInode, ok := e.GetInode(child)
		if !ok {
			continue
		}
		out = append(out, DirEntry{
			Ino:  child,
			Name: decodeName(childInode.Name),
			Kind: childInode.Attr.Kind,
		})
	}

	return out, nil
}

// Unlink removes a regular file entry. Fails IsDirectory if the target is a
// directory, IO if no such child exists.
func Unlink(e *storage.Engine, parent uint32, name string) error {
	child, ok, err := e.FindChildByName(parent, name)
	if err != nil {
		return err
	}
	if !ok {
		return storage.ErrIO
	}
	if child.Attr.Kind == storage.KindDirectory {
		return storage.ErrIsDirectory
	}

	ino := child.Attr.Ino
	e.ClearInode(ino)
	e.ClearBlock(int(ino) - 1)
	if err := e.ClearReference(parent, ino); err != nil {
		return err
	}
	return nil
}

// Rmdir removes a directory entry without checking for emptiness and
// without recursively freeing children (spec §9, flagged but not fixed).
func Rmdir(e *storage.Engine, parent uint32, name string) error {
	child, ok, err := e.FindChildByName(parent, name)
	if err != nil {
		return err
	}
	if !ok {
		return storage.ErrIO
	}

	ino := child.Attr.Ino
	e.ClearInode(ino)
	if err := e.ClearReference(parent, ino); err != nil {
		return err
	}
	return nil
}

// Fsync is never implemented; persistence is driven by shutdown.
func Fsync(e *storage.Engine, ino uint32) error {
	return storage.ErrNotSupported
}
