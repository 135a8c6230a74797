package storage

import "strings"

// GetInode returns a copy of the inode at ino, or ok=false if the slot is
// empty or out of range.
func (e *Engine) GetInode(ino uint32) (Inode, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.getInodeLocked(ino)
}

func (e *Engine) getInodeLocked(ino uint32) (Inode, bool) {
	if !e.isOccupiedLocked(ino) {
		return Inode{}, false
	}
	return e.superblock[ino-1], true
}

// FindChildByName walks parent's reference array looking for a child whose
// NUL-padded, trimmed name matches name. It fails with ErrInvalidParent if
// parent is not an occupied directory slot.
func (e *Engine) FindChildByName(parent uint32, name string) (Inode, bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.findChildByNameLocked(parent, name)
}

func (e *Engine) findChildByNameLocked(parent uint32, name string) (Inode, bool, error) {
	if !e.isOccupiedLocked(parent) || e.superblock[parent-1].Attr.Kind != KindDirectory {
		return Inode{}, false, ErrInvalidParent
	}
	want := strings.TrimSpace(name)
	refs := e.superblock[parent-1].Refs
	for _, child := range refs {
		if child == 0 {
			continue
		}
		if !e.isOccupiedLocked(child) {
			// An invariant violation: a reference points at a free slot.
			panic("risosfs: directory reference points at a free inode slot")
		}
		childIno := e.superblock[child-1]
		got := decodeName(childIno.Name)
		if got == want {
			return childIno, true, nil
		}
	}
	return Inode{}, false, nil
}

// GetContent returns the payload of the block at blockIdx, or ok=false if
// the block is free.
func (e *Engine) GetContent(blockIdx int) ([]byte, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.getContentLocked(blockIdx)
}

func (e *Engine) getContentLocked(blockIdx int) ([]byte, bool) {
	if blockIdx < 0 || blockIdx >= len(e.pool) {
		return nil, false
	}
	b := e.pool[blockIdx]
	if !b.Present {
		return nil, false
	}
	return b.Data, true
}

// decodeName trims the NUL padding and surrounding whitespace from a
// fixed-length name array, matching the original lookup comparison:
// both sides of a name comparison are trimmed of NULs and whitespace.
func decodeName(raw [64]byte) string {
	n := len(raw)
	for n > 0 && raw[n-1] == 0 {
		n--
	}
	return strings.TrimSpace(string(raw[:n]))
}

// encodeName pads name with NUL bytes into a fixed-length array. The caller
// is responsible for rejecting names that do not fit (see Engine.nameFits).
func encodeName(name string) [64]byte {
	var out [64]byte
	copy(out[:], name)
	return out
}

func (e *Engine) nameFits(name string) bool {
	return len(name) <= len(encodeName(""))
}
