// Package storage implements the RisosFS storage engine: the superblock of
// inode slots, the data pool of memory blocks, the in-memory allocator, and
// snapshot/restore to two sidecar files. It is the only component that
// touches filesystem state; internal/fsdriver talks to it exclusively
// through the methods in this package.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/ufabc-bcc/risosfs/internal/serialization"
)

const (
	inodeSidecarName = ".inode.risos"
	diskSidecarName  = ".disco.risos"

	// RootIno is the inode number of the root directory, always present.
	RootIno uint32 = 1
)

// Engine owns all filesystem state for one mount. Every exported method
// is safe to call concurrently: a single mutex is held for the duration of
// each call. An operation made of several calls (such as fsdriver.Create)
// is kept from interleaving with another by the mount serving one request
// at a time (cmd/risosfs sets fuse.MountOptions.SingleThreaded).
type Engine struct {
	mu sync.Mutex

	log logrus.FieldLogger

	rootPath  string
	blockSize int

	blockQuantity int
	inodeSize     int
	maxFiles      int

	superblock []Inode
	occupied   []bool
	pool       []MemoryBlock
}

// Config carries the construction parameters of spec §4.2.1.
type Config struct {
	RootPath          string
	MemorySizeInBytes int
	BlockSize         int
	Log               logrus.FieldLogger
}

// New constructs the storage engine: it computes capacities, then either
// restores a prior snapshot from the two sidecar files at RootPath or seeds a
// fresh superblock and data pool.
func New(cfg Config) (*Engine, error) {
	log := cfg.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	blockQuantity := cfg.MemorySizeInBytes/cfg.BlockSize - 1
	inodeSize := serialization.InodeSize
	maxFiles := cfg.BlockSize / inodeSize

	e := &Engine{
		log:           log,
		rootPath:      cfg.RootPath,
		blockSize:     cfg.BlockSize,
		blockQuantity: blockQuantity,
		inodeSize:     inodeSize,
		maxFiles:      maxFiles,
	}

	inodePath := e.inodeSidecarPath()
	diskPath := e.diskSidecarPath()

	_, inodeErr := os.Stat(inodePath)
	_, diskErr := os.Stat(diskPath)

	if inodeErr == nil && diskErr == nil {
		if err := e.restore(inodePath, diskPath); err != nil {
			return nil, err
		}
	} else {
		if err := e.seed(inodePath, diskPath); err != nil {
			return nil, err
		}
	}

	e.padSuperblock()
	e.padPool()

	log.WithFields(logrus.Fields{
		"memory_size_kbytes": cfg.MemorySizeInBytes / 1024,
		"block_size_kbytes":  cfg.BlockSize / 1024,
		"block_quantity":     blockQuantity,
		"inode_size_bytes":   inodeSize,
		"max_files":          maxFiles,
	}).Info("risosfs: storage engine ready")

	return e, nil
}

func (e *Engine) inodeSidecarPath() string {
	return filepath.Join(e.rootPath, inodeSidecarName)
}

func (e *Engine) diskSidecarPath() string {
	return filepath.Join(e.rootPath, diskSidecarName)
}

// restore loads a prior snapshot. Called only from New.
func (e *Engine) restore(inodePath, diskPath string) error {
	e.log.Info("risosfs: existing disk found, loading...")

	inodeBytes, err := os.ReadFile(inodePath)
	if err != nil {
		return fmt.Errorf("risosfs: read %s: %w", inodePath, err)
	}
	diskBytes, err := os.ReadFile(diskPath)
	if err != nil {
		return fmt.Errorf("risosfs: read %s: %w", diskPath, err)
	}

	var slots []serialization.Inode
	if len(inodeBytes) > 0 {
		slots, err = serialization.DecodeInodes(inodeBytes)
		if err != nil {
			return fmt.Errorf("%w: inode table: %s", ErrCorruptSnapshot, err)
		}
	}

	var blocks []serialization.MemoryBlock
	if len(diskBytes) > 0 {
		blocks, err = serialization.DecodeBlocks(diskBytes)
		if err != nil {
			return fmt.Errorf("%w: data pool: %s", ErrCorruptSnapshot, err)
		}
	}

	if e.blockQuantity < len(blocks) {
		return fmt.Errorf("%w: persisted disk has %d blocks, configured for %d", ErrTooSmall, len(blocks), e.blockQuantity)
	}

	e.superblock = make([]Inode, len(slots))
	e.occupied = make([]bool, len(slots))
	for i, s := range slots {
		e.occupied[i] = s.Present
		e.superblock[i] = fromSerInode(s)
	}

	e.pool = make([]MemoryBlock, len(blocks))
	for i, b := range blocks {
		e.pool[i] = MemoryBlock{Present: b.Present, Data: b.Data}
	}

	return nil
}

// seed creates empty sidecar files and the root directory. Called only from
// New when no prior snapshot exists.
func (e *Engine) seed(inodePath, diskPath string) error {
	if _, err := os.Create(inodePath); err != nil {
		return fmt.Errorf("risosfs: create %s: %w", inodePath, err)
	}
	if _, err := os.Create(diskPath); err != nil {
		return fmt.Errorf("risosfs: create %s: %w", diskPath, err)
	}

	now := nowTimespec()
	var root Inode
	copy(root.Name[:], ".")
	root.Attr = Attr{
		Ino:    RootIno,
		Size:   0,
		Blocks: 0,
		Atime:  now,
		Mtime:  now,
		Ctime:  now,
		Crtime: now,
		Kind:   KindDirectory,
		Perm:   0o755,
		Nlink:  0,
	}

	e.superblock = []Inode{root}
	e.occupied = []bool{true}
	e.pool = nil

	return nil
}

func (e *Engine) padSuperblock() {
	for len(e.superblock) < e.maxFiles {
		e.superblock = append(e.superblock, Inode{})
		e.occupied = append(e.occupied, false)
	}
}

func (e *Engine) padPool() {
	for len(e.pool) < e.blockQuantity {
		e.pool = append(e.pool, MemoryBlock{})
	}
}

func nowTimespec() Timespec {
	n := time.Now()
	return Timespec{Sec: n.Unix(), Nsec: int32(n.Nanosecond())}
}
