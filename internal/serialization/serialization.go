// Package serialization defines the on-disk binary shape of every type the
// storage engine persists: timestamps, inode attributes, the fixed-length
// name and reference arrays, and memory blocks. internal/storage uses it for
// snapshot/restore and for its capacity computation (InodeSize); cmd/risosfs
// uses InodeSize for its default block size.
package serialization

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Fixed array widths. These must never change once a snapshot format has
// shipped, since they are not themselves recorded on disk.
const (
	NameLen = 64
	RefLen  = 128
)

var order = binary.LittleEndian

// Timespec is a (seconds, nanoseconds) pair, the serialized form of every
// inode timestamp.
type Timespec struct {
	Sec  int64
	Nsec int32
}

func (t Timespec) MarshalBinary() ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, order, t.Sec); err != nil {
		return nil, err
	}
	if err := binary.Write(buf, order, t.Nsec); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (t *Timespec) UnmarshalFrom(r io.Reader) error {
	if err := binary.Read(r, order, &t.Sec); err != nil {
		return err
	}
	return binary.Read(r, order, &t.Nsec)
}

// timespecSize is the encoded size of one Timespec: 8 bytes of seconds plus
// 4 bytes of nanoseconds.
const timespecSize = 8 + 4

// Attr is the serialized form of an inode's attributes.
type Attr struct {
	Ino    uint64
	Size   uint64
	Blocks uint64
	Atime  Timespec
	Mtime  Timespec
	Ctime  Timespec
	Crtime Timespec
	Kind   uint16
	Perm   uint16
	Nlink  uint32
	Uid    uint32
	Gid    uint32
	Rdev   uint32
	Flags  uint32
}

// AttrSize is the fixed encoded size of one Attr.
const AttrSize = 8 + 8 + 8 + 4*timespecSize + 2 + 2 + 4 + 4 + 4 + 4 + 4

func (a Attr) WriteTo(w io.Writer) error {
	fields := []any{
		a.Ino, a.Size, a.Blocks,
	}
	for _, f := range fields {
		if err := binary.Write(w, order, f); err != nil {
			return fmt.Errorf("encode attr: %w", err)
		}
	}
	for _, ts := range []Timespec{a.Atime, a.Mtime, a.Ctime, a.Crtime} {
		b, err := ts.MarshalBinary()
		if err != nil {
			return fmt.Errorf("encode attr timestamp: %w", err)
		}
		if _, err := w.Write(b); err != nil {
			return fmt.Errorf("encode attr timestamp: %w", err)
		}
	}
	tail := []any{a.Kind, a.Perm, a.Nlink, a.Uid, a.Gid, a.Rdev, a.Flags}
	for _, f := range tail {
		if err := binary.Write(w, order, f); err != nil {
			return fmt.Errorf("encode attr: %w", err)
		}
	}
	return nil
}

func (a *Attr) ReadFrom(r io.Reader) error {
	for _, f := range []any{&a.Ino, &a.Size, &a.Blocks} {
		if err := binary.Read(r, order, f); err != nil {
			return fmt.Errorf("decode attr: %w", err)
		}
	}
	for _, ts := range []*Timespec{&a.Atime, &a.Mtime, &a.Ctime, &a.Crtime} {
		if err := ts.UnmarshalFrom(r); err != nil {
			return fmt.Errorf("decode attr timestamp: %w", err)
		}
	}
	for _, f := range []any{&a.Kind, &a.Perm, &a.Nlink, &a.Uid, &a.Gid, &a.Rdev, &a.Flags} {
		if err := binary.Read(r, order, f); err != nil {
			return fmt.Errorf("decode attr: %w", err)
		}
	}
	return nil
}

// Inode is the serialized form of one superblock slot: a presence tag, the
// fixed-length NUL-padded name, the attributes, and the fixed-length
// reference array (0 = empty entry).
type Inode struct {
	Present bool
	Name    [NameLen]byte
	Attr    Attr
	Refs    [RefLen]uint32
}

// InodeSize is the fixed encoded size of one superblock slot including its
// presence tag, used by the storage engine to compute max_files.
const InodeSize = 1 + NameLen + AttrSize + RefLen*4

func (ino Inode) WriteTo(w io.Writer) error {
	present := byte(0)
	if ino.Present {
		present = 1
	}
	if err := binary.Write(w, order, present); err != nil {
		return fmt.Errorf("encode inode presence: %w", err)
	}
	if _, err := w.Write(ino.Name[:]); err != nil {
		return fmt.Errorf("encode inode name: %w", err)
	}
	if err := ino.Attr.WriteTo(w); err != nil {
		return err
	}
	for _, ref := range ino.Refs {
		if err := binary.Write(w, order, ref); err != nil {
			return fmt.Errorf("encode inode reference: %w", err)
		}
	}
	return nil
}

func (ino *Inode) ReadFrom(r io.Reader) error {
	var present byte
	if err := binary.Read(r, order, &present); err != nil {
		return fmt.Errorf("decode inode presence: %w", err)
	}
	ino.Present = present != 0
	if _, err := io.ReadFull(r, ino.Name[:]); err != nil {
		return fmt.Errorf("decode inode name: %w", err)
	}
	if err := ino.Attr.ReadFrom(r); err != nil {
		return err
	}
	for i := range ino.Refs {
		if err := binary.Read(r, order, &ino.Refs[i]); err != nil {
			return fmt.Errorf("decode inode reference: %w", err)
		}
	}
	return nil
}

// MemoryBlock is the serialized form of one data pool slot: a presence tag
// followed by a length-prefixed payload when present.
type MemoryBlock struct {
	Present bool
	Data    []byte
}

func (b MemoryBlock) WriteTo(w io.Writer) error {
	present := byte(0)
	if b.Present {
		present = 1
	}
	if err := binary.Write(w, order, present); err != nil {
		return fmt.Errorf("encode block presence: %w", err)
	}
	if !b.Present {
		return nil
	}
	if err := binary.Write(w, order, uint32(len(b.Data))); err != nil {
		return fmt.Errorf("encode block length: %w", err)
	}
	if _, err := w.Write(b.Data); err != nil {
		return fmt.Errorf("encode block data: %w", err)
	}
	return nil
}

func (b *MemoryBlock) ReadFrom(r io.Reader) error {
	var present byte
	if err := binary.Read(r, order, &present); err != nil {
		return fmt.Errorf("decode block presence: %w", err)
	}
	b.Present = present != 0
	if !b.Present {
		b.Data = nil
		return nil
	}
	var n uint32
	if err := binary.Read(r, order, &n); err != nil {
		return fmt.Errorf("decode block length: %w", err)
	}
	b.Data = make([]byte, n)
	if _, err := io.ReadFull(r, b.Data); err != nil {
		return fmt.Errorf("decode block data: %w", err)
	}
	return nil
}

// EncodeInodes serializes the whole superblock: a count followed by that
// many encoded Inode entries.
func EncodeInodes(slots []Inode) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, order, uint32(len(slots))); err != nil {
		return nil, fmt.Errorf("encode superblock count: %w", err)
	}
	for i, s := range slots {
		if err := s.WriteTo(buf); err != nil {
			return nil, fmt.Errorf("encode superblock slot %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}

// DecodeInodes deserializes a whole superblock as encoded by EncodeInodes.
func DecodeInodes(data []byte) ([]Inode, error) {
	r := bytes.NewReader(data)
	var count uint32
	if err := binary.Read(r, order, &count); err != nil {
		return nil, fmt.Errorf("decode superblock count: %w", err)
	}
	slots := make([]Inode, count)
	for i := range slots {
		if err := slots[i].ReadFrom(r); err != nil {
			return nil, fmt.Errorf("decode superblock slot %d: %w", i, err)
		}
	}
	return slots, nil
}

// EncodeBlocks serializes the whole data pool: a count followed by that many
// encoded MemoryBlock entries.
func EncodeBlocks(blocks []MemoryBlock) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, order, uint32(len(blocks))); err != nil {
		return nil, fmt.Errorf("encode pool count: %w", err)
	}
	for i, b := range blocks {
		if err := b.WriteTo(buf); err != nil {
			return nil, fmt.Errorf("encode pool slot %d: %w", i, err)
		}
	}
	return buf.Bytes(), nil
}

// DecodeBlocks deserializes a whole data pool as encoded by EncodeBlocks.
func DecodeBlocks(data []byte) ([]MemoryBlock, error) {
	r := bytes.NewReader(data)
	var count uint32
	if err := binary.Read(r, order, &count); err != nil {
		return nil, fmt.Errorf("decode pool count: %w", err)
	}
	blocks := make([]MemoryBlock, count)
	for i := range blocks {
		if err := blocks[i].ReadFrom(r); err != nil {
			return nil, fmt.Errorf("decode pool slot %d: %w", i, err)
		}
	}
	return blocks, nil
}
