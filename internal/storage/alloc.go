package storage

// FindInoAvailable returns the smallest 1-based inode number whose
// superblock slot is empty, or ok=false if every slot is occupied.
func (e *Engine) FindInoAvailable() (ino uint32, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.findInoAvailableLocked()
}

func (e *Engine) findInoAvailableLocked() (uint32, bool) {
	for i := 0; i < len(e.occupied); i++ {
		if !e.occupied[i] {
			return uint32(i + 1), true
		}
	}
	return 0, false
}

// FindEmptyBlock returns the smallest 0-based index whose data pool block is
// free, or ok=false if every block is occupied.
func (e *Engine) FindEmptyBlock() (idx int, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.findEmptyBlockLocked()
}

func (e *Engine) findEmptyBlockLocked() (int, bool) {
	for i := 0; i < len(e.pool); i++ {
		if !e.pool[i].Present {
			return i, true
		}
	}
	return 0, false
}

// FindEmptyReference returns the smallest index in parent's reference array
// that is empty, or ok=false if the directory is full. It fails with
// ErrInvalidParent if parent does not name an occupied slot.
func (e *Engine) FindEmptyReference(parent uint32) (refIdx int, ok bool, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.findEmptyReferenceLocked(parent)
}

func (e *Engine) findEmptyReferenceLocked(parent uint32) (int, bool, error) {
	if !e.isOccupiedLocked(parent) || e.superblock[parent-1].Attr.Kind != KindDirectory {
		return 0, false, ErrInvalidParent
	}
	refs := e.superblock[parent-1].Refs
	for i := 0; i < len(refs); i++ {
		if refs[i] == 0 {
			return i, true, nil
		}
	}
	return 0, false, nil
}

func (e *Engine) isOccupiedLocked(ino uint32) bool {
	if ino == 0 || int(ino) > len(e.occupied) {
		return false
	}
	return e.occupied[ino-1]
}
