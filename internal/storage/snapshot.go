package storage

import (
	"os"

	"github.com/ufabc-bcc/risosfs/internal/serialization"
)

// WriteToDisk encodes the entire superblock and data pool to their sidecar
// files, truncating each before writing so a smaller snapshot never leaves
// trailing bytes from a larger prior one. It is called exactly once, at
// orderly teardown. Each file's failure is logged and does not prevent the
// other file from being attempted, since this runs during shutdown and has
// nowhere to propagate a synchronous error to.
func (e *Engine) WriteToDisk() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.writeInodeSidecarLocked()
	e.writeDiskSidecarLocked()
}

func (e *Engine) writeInodeSidecarLocked() {
	slots := make([]serialization.Inode, len(e.superblock))
	for i, ino := range e.superblock {
		slots[i] = toSerInode(ino, e.occupied[i])
	}

	data, err := serialization.EncodeInodes(slots)
	if err != nil {
		e.log.WithError(err).Error("risosfs: failed to encode inode table")
		return
	}

	if err := os.WriteFile(e.inodeSidecarPath(), data, 0o644); err != nil {
		e.log.WithError(err).Error("risosfs: failed to write inode table")
	}
}

func (e *Engine) writeDiskSidecarLocked() {
	blocks := make([]serialization.MemoryBlock, len(e.pool))
	for i, b := range e.pool {
		blocks[i] = serialization.MemoryBlock{Present: b.Present, Data: b.Data}
	}

	data, err := serialization.EncodeBlocks(blocks)
	if err != nil {
		e.log.WithError(err).Error("risosfs: failed to encode data pool")
		return
	}

	if err := os.WriteFile(e.diskSidecarPath(), data, 0o644); err != nil {
		e.log.WithError(err).Error("risosfs: failed to write data pool")
	}
}
