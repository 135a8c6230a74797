package storage

import "fmt"

// WriteInode places inode at index inode.Attr.Ino-1, marking that slot
// occupied. Per spec §4.2.4 this is a soft failure: if the encoded inode
// would exceed the block size it is logged and the write is a no-op, since
// in practice no caller in this engine ever constructs an inode that large
// (names are capped at 64 bytes and the struct is fixed width).
func (e *Engine) WriteInode(inode Inode) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.writeInodeLocked(inode)
}

func (e *Engine) writeInodeLocked(inode Inode) error {
	ino := inode.Attr.Ino
	if ino == 0 || int(ino) > len(e.superblock) {
		return fmt.Errorf("risosfs: inode number %d out of range", ino)
	}
	if e.inodeSize > e.blockSize {
		e.log.WithFields(map[string]any{
			"ino":        ino,
			"inode_size": e.inodeSize,
			"block_size": e.blockSize,
		}).Warn("risosfs: not saving inode, larger than memory block size")
		return nil
	}
	e.superblock[ino-1] = inode
	e.occupied[ino-1] = true
	return nil
}

// WriteReference sets parent's reference slot at refIdx to child. It fails
// with ErrInvalidParent if parent is not an occupied slot.
func (e *Engine) WriteReference(parent uint32, refIdx int, child uint32) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.writeReferenceLocked(parent, refIdx, child)
}

func (e *Engine) writeReferenceLocked(parent uint32, refIdx int, child uint32) error {
	if !e.isOccupiedLocked(parent) {
		return ErrInvalidParent
	}
	e.superblock[parent-1].Refs[refIdx] = child
	return nil
}

// WriteContent replaces the payload of the block at blockIdx. It fails
// (hard) with ErrOversize if data exceeds the block size.
func (e *Engine) WriteContent(blockIdx int, data []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.writeContentLocked(blockIdx, data)
}

func (e *Engine) writeContentLocked(blockIdx int, data []byte) error {
	if len(data) > e.blockSize {
		return fmt.Errorf("%w: %d bytes into a %d byte block", ErrOversize, len(data), e.blockSize)
	}
	if blockIdx < 0 || blockIdx >= len(e.pool) {
		return fmt.Errorf("risosfs: block index %d out of range", blockIdx)
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	e.pool[blockIdx] = MemoryBlock{Present: true, Data: cp}
	return nil
}

// ClearInode empties the slot at ino. Idempotent.
func (e *Engine) ClearInode(ino uint32) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clearInodeLocked(ino)
}

func (e *Engine) clearInodeLocked(ino uint32) {
	if ino == 0 || int(ino) > len(e.superblock) {
		return
	}
	e.superblock[ino-1] = Inode{}
	e.occupied[ino-1] = false
}

// ClearBlock empties the block at blockIdx. Idempotent.
func (e *Engine) ClearBlock(blockIdx int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clearBlockLocked(blockIdx)
}

func (e *Engine) clearBlockLocked(blockIdx int) {
	if blockIdx < 0 || blockIdx >= len(e.pool) {
		return
	}
	e.pool[blockIdx] = MemoryBlock{}
}

// ClearReference finds the first reference entry in parent equal to child
// and empties it. It fails with ErrNotAChild if no such entry exists, or
// ErrInvalidParent if parent is not occupied.
func (e *Engine) ClearReference(parent uint32, child uint32) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clearReferenceLocked(parent, child)
}

func (e *Engine) clearReferenceLocked(parent uint32, child uint32) error {
	if !e.isOccupiedLocked(parent) {
		return ErrInvalidParent
	}
	refs := &e.superblock[parent-1].Refs
	for i, c := range refs {
		if c == child {
			refs[i] = 0
			return nil
		}
	}
	return ErrNotAChild
}
