package fsdriver

import (
	"context"
	"os"
	"syscall"

	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
	"github.com/sirupsen/logrus"

	"github.com/ufabc-bcc/risosfs/internal/storage"
)

// RisosNode adapts one live inode number onto go-fuse/v2's high-level node
// interfaces. All instances created under one mount share a single
// *storage.Engine, which is the only component that actually owns
// filesystem state; this type is pure translation.
type RisosNode struct {
	fs.Inode

	engine *storage.Engine
	log    logrus.FieldLogger
}

var (
	_ fs.NodeLookuper  = (*RisosNode)(nil)
	_ fs.NodeGetattrer = (*RisosNode)(nil)
	_ fs.NodeSetattrer = (*RisosNode)(nil)
	_ fs.NodeOpener    = (*RisosNode)(nil)
	_ fs.NodeCreater   = (*RisosNode)(nil)
	_ fs.NodeMkdirer   = (*RisosNode)(nil)
	_ fs.NodeWriter    = (*RisosNode)(nil)
	_ fs.NodeReader    = (*RisosNode)(nil)
	_ fs.NodeReaddirer = (*RisosNode)(nil)
	_ fs.NodeUnlinker  = (*RisosNode)(nil)
	_ fs.NodeRmdirer   = (*RisosNode)(nil)
	_ fs.NodeFsyncer   = (*RisosNode)(nil)
)

// NewRoot builds the node to pass as fs.Mount's root argument: it wraps
// storage.RootIno and shares engine with every node the tree grows from it.
func NewRoot(engine *storage.Engine, log logrus.FieldLogger) *RisosNode {
	return &RisosNode{engine: engine, log: log}
}

func (n *RisosNode) ino() uint32 {
	return uint32(n.StableAttr().Ino)
}

func modeFor(kind storage.Kind) uint32 {
	return storage.KindToUnixType(kind)
}

func fillAttr(attr storage.Attr, out *fuse.Attr) {
	out.Ino = uint64(attr.Ino)
	out.Size = attr.Size
	out.Blocks = attr.Blocks
	out.Atime = uint64(attr.Atime.Sec)
	out.Atimensec = uint32(attr.Atime.Nsec)
	out.Mtime = uint64(attr.Mtime.Sec)
	out.Mtimensec = uint32(attr.Mtime.Nsec)
	out.Ctime = uint64(attr.Ctime.Sec)
	out.Ctimensec = uint32(attr.Ctime.Nsec)
	out.Mode = modeFor(attr.Kind) | uint32(attr.Perm)
	out.Nlink = attr.Nlink
	out.Uid = attr.Uid
	out.Gid = attr.Gid
	out.Rdev = attr.Rdev
	out.Blksize = 4096
}

func (n *RisosNode) childFor(ctx context.Context, inode storage.Inode) *fs.Inode {
	child := &RisosNode{engine: n.engine, log: n.log}
	return n.NewInode(ctx, child, fs.StableAttr{
		Mode: modeFor(inode.Attr.Kind),
		Ino:  uint64(inode.Attr.Ino),
	})
}

func (n *RisosNode) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	inode, err := Lookup(n.engine, n.ino(), name)
	if err != nil {
		return nil, toErrno(err)
	}
	fillAttr(inode.Attr, &out.Attr)
	out.NodeId = uint64(inode.Attr.Ino)
	return n.childFor(ctx, inode), 0
}

func (n *RisosNode) Getattr(ctx context.Context, f fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	inode, err := GetAttr(n.engine, n.ino())
	if err != nil {
		return toErrno(err)
	}
	fillAttr(inode.Attr, &out.Attr)
	return 0
}

func (n *RisosNode) Setattr(ctx context.Context, f fs.FileHandle, in *fuse.SetAttrIn, out *fuse.AttrOut) syscall.Errno {
	var upd AttrUpdate
	if sz, ok := in.GetSize(); ok {
		upd.Size = &sz
	}
	if at, ok := in.GetATime(); ok {
		ts := storage.Timespec{Sec: at.Unix(), Nsec: int32(at.Nanosecond())}
		upd.Atime = &ts
	}
	if mt, ok := in.GetMTime(); ok {
		ts := storage.Timespec{Sec: mt.Unix(), Nsec: int32(mt.Nanosecond())}
		upd.Mtime = &ts
	}
	if uid, ok := in.GetUID(); ok {
		upd.Uid = &uid
	}
	if gid, ok := in.GetGID(); ok {
		upd.Gid = &gid
	}
	// The FUSE wire protocol's setattr request carries no crtime or flags
	// field (only mode/uid/gid/size/atime/mtime, per FATTR_*), so there is
	// nothing to extract for them here even though ops.SetAttr accepts both.

	inode, err := SetAttr(n.engine, n.ino(), upd)
	if err != nil {
		return toErrno(err)
	}
	fillAttr(inode.Attr, &out.Attr)
	return 0
}

func (n *RisosNode) Open(ctx context.Context, flags uint32) (fs.FileHandle, uint32, syscall.Errno) {
	if _, err := Open(n.engine, n.ino()); err != nil {
		return nil, 0, toErrno(err)
	}
	return nil, 0, 0
}

func (n *RisosNode) Create(ctx context.Context, name string, flags uint32, mode uint32, out *fuse.EntryOut) (*fs.Inode, fs.FileHandle, uint32, syscall.Errno) {
	uid, gid := uint32(os.Getuid()), uint32(os.Getgid())

	inode, err := Create(n.engine, n.ino(), name, uint16(mode&0o777), uid, gid)
	if err != nil {
		return nil, nil, 0, toErrno(err)
	}
	fillAttr(inode.Attr, &out.Attr)
	out.NodeId = uint64(inode.Attr.Ino)
	return n.childFor(ctx, inode), nil, 0, 0
}

func (n *RisosNode) Mkdir(ctx context.Context, name string, mode uint32, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	uid, gid := uint32(os.Getuid()), uint32(os.Getgid())

	inode, err := Mkdir(n.engine, n.ino(), name, uint16(mode&0o777), uid, gid)
	if err != nil {
		return nil, toErrno(err)
	}
	fillAttr(inode.Attr, &out.Attr)
	out.NodeId = uint64(inode.Attr.Ino)
	return n.childFor(ctx, inode), 0
}

func (n *RisosNode) Write(ctx context.Context, f fs.FileHandle, data []byte, off int64) (uint32, syscall.Errno) {
	written, err := Write(n.engine, n.ino(), data)
	if err != nil {
		return 0, toErrno(err)
	}
	return uint32(written), 0
}

func (n *RisosNode) Read(ctx context.Context, f fs.FileHandle, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	data, err := Read(n.engine, n.ino())
	if err != nil {
		return nil, toErrno(err)
	}
	return fuse.ReadResultData(data), 0
}

// Readdir lists a directory's real children only. go-fuse's own bridge
// layer synthesizes "." and ".." on every ReadDirPlus regardless of what a
// node returns here (confirmed against the library's own
// TestBridgeReaddirPlusVirtualEntries), so the synthetic entries ReadDir
// produces for the root are stripped before building the stream to avoid
// emitting them twice.
func (n *RisosNode) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	entries, err := ReadDir(n.engine, n.ino())
	if err != nil {
		return nil, toErrno(err)
	}

	list := make([]fuse.DirEntry, 0, len(entries))
	for _, e := range entries {
		if e.Name == "." || e.Name == ".." {
			continue
		}
		list = append(list, fuse.DirEntry{
			Ino:  uint64(e.Ino),
			Name: e.Name,
			Mode: modeFor(e.Kind),
		})
	}
	return fs.NewListDirStream(list), 0
}

func (n *RisosNode) Unlink(ctx context.Context, name string) syscall.Errno {
	return toErrno(Unlink(n.engine, n.ino(), name))
}

func (n *RisosNode) Rmdir(ctx context.Context, name string) syscall.Errno {
	return toErrno(Rmdir(n.engine, n.ino(), name))
}

func (n *RisosNode) Fsync(ctx context.Context, f fs.FileHandle, flags uint32) syscall.Errno {
	return toErrno(Fsync(n.engine, n.ino()))
}
