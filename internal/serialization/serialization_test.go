package serialization_test

import (
	"bytes"
	"testing"

	"github.com/ufabc-bcc/risosfs/internal/serialization"
)

func TestTimespecRoundTrip(t *testing.T) {
	ts := serialization.Timespec{Sec: 1234567890, Nsec: 42}
	b, err := ts.MarshalBinary()
	if err != nil {
		t.Fatalf("marshal: %s", err)
	}

	var got serialization.Timespec
	if err := got.UnmarshalFrom(bytes.NewReader(b)); err != nil {
		t.Fatalf("unmarshal: %s", err)
	}
	if got != ts {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, ts)
	}
}

func TestAttrRoundTrip(t *testing.T) {
	a := serialization.Attr{
		Ino:    7,
		Size:   4096,
		Blocks: 1,
		Atime:  serialization.Timespec{Sec: 1, Nsec: 2},
		Mtime:  serialization.Timespec{Sec: 3, Nsec: 4},
		Ctime:  serialization.Timespec{Sec: 5, Nsec: 6},
		Crtime: serialization.Timespec{Sec: 7, Nsec: 8},
		Kind:   1,
		Perm:   0o755,
		Nlink:  1,
		Uid:    1000,
		Gid:    1000,
		Rdev:   0,
		Flags:  0,
	}

	buf := new(bytes.Buffer)
	if err := a.WriteTo(buf); err != nil {
		t.Fatalf("write: %s", err)
	}
	if buf.Len() != serialization.AttrSize {
		t.Errorf("encoded size = %d, want %d", buf.Len(), serialization.AttrSize)
	}

	var got serialization.Attr
	if err := got.ReadFrom(buf); err != nil {
		t.Fatalf("read: %s", err)
	}
	if got != a {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, a)
	}
}

func TestInodeRoundTrip(t *testing.T) {
	var ino serialization.Inode
	ino.Present = true
	copy(ino.Name[:], "hello.txt")
	ino.Attr.Ino = 2
	ino.Attr.Size = 5
	ino.Refs[0] = 3
	ino.Refs[1] = 9

	buf := new(bytes.Buffer)
	if err := ino.WriteTo(buf); err != nil {
		t.Fatalf("write: %s", err)
	}
	if buf.Len() != serialization.InodeSize {
		t.Errorf("encoded size = %d, want %d", buf.Len(), serialization.InodeSize)
	}

	var got serialization.Inode
	if err := got.ReadFrom(buf); err != nil {
		t.Fatalf("read: %s", err)
	}
	if got != ino {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, ino)
	}
}

func TestEmptyInodeRoundTrip(t *testing.T) {
	var ino serialization.Inode // Present = false, everything else zero

	buf := new(bytes.Buffer)
	if err := ino.WriteTo(buf); err != nil {
		t.Fatalf("write: %s", err)
	}

	var got serialization.Inode
	if err := got.ReadFrom(buf); err != nil {
		t.Fatalf("read: %s", err)
	}
	if got != ino {
		t.Errorf("round trip mismatch for empty inode: got %+v", got)
	}
}

func TestMemoryBlockRoundTrip(t *testing.T) {
	cases := []serialization.MemoryBlock{
		{Present: false},
		{Present: true, Data: []byte("hello world")},
		{Present: true, Data: []byte{}},
	}

	for i, mb := range cases {
		buf := new(bytes.Buffer)
		if err := mb.WriteTo(buf); err != nil {
			t.Fatalf("case %d: write: %s", i, err)
		}

		var got serialization.MemoryBlock
		if err := got.ReadFrom(buf); err != nil {
			t.Fatalf("case %d: read: %s", i, err)
		}
		if got.Present != mb.Present || !bytes.Equal(got.Data, mb.Data) {
			t.Errorf("case %d: round trip mismatch: got %+v, want %+v", i, got, mb)
		}
	}
}

func TestInodeContainerRoundTrip(t *testing.T) {
	slots := make([]serialization.Inode, 4)
	slots[0].Present = true
	copy(slots[0].Name[:], ".")
	slots[0].Attr.Ino = 1
	slots[2].Present = true
	copy(slots[2].Name[:], "a.txt")
	slots[2].Attr.Ino = 3

	data, err := serialization.EncodeInodes(slots)
	if err != nil {
		t.Fatalf("encode: %s", err)
	}

	got, err := serialization.DecodeInodes(data)
	if err != nil {
		t.Fatalf("decode: %s", err)
	}
	if len(got) != len(slots) {
		t.Fatalf("decoded %d slots, want %d", len(got), len(slots))
	}
	for i := range slots {
		if got[i] != slots[i] {
			t.Errorf("slot %d mismatch: got %+v, want %+v", i, got[i], slots[i])
		}
	}
}

func TestBlockContainerRoundTrip(t *testing.T) {
	blocks := make([]serialization.MemoryBlock, 3)
	blocks[1] = serialization.MemoryBlock{Present: true, Data: []byte("abc")}

	data, err := serialization.EncodeBlocks(blocks)
	if err != nil {
		t.Fatalf("encode: %s", err)
	}

	got, err := serialization.DecodeBlocks(data)
	if err != nil {
		t.Fatalf("decode: %s", err)
	}
	if len(got) != len(blocks) {
		t.Fatalf("decoded %d blocks, want %d", len(got), len(blocks))
	}
	for i := range blocks {
		if got[i].Present != blocks[i].Present || !bytes.Equal(got[i].Data, blocks[i].Data) {
			t.Errorf("block %d mismatch: got %+v, want %+v", i, got[i], blocks[i])
		}
	}
}

func TestDecodeEmptyContainers(t *testing.T) {
	if _, err := serialization.DecodeInodes(nil); err == nil {
		t.Errorf("expected error decoding empty byte slice as inode container")
	}
	if _, err := serialization.DecodeBlocks(nil); err == nil {
		t.Errorf("expected error decoding empty byte slice as pool container")
	}
}
