package fsdriver_test

import (
	"testing"

	"github.com/ufabc-bcc/risosfs/internal/fsdriver"
	"github.com/ufabc-bcc/risosfs/internal/serialization"
	"github.com/ufabc-bcc/risosfs/internal/storage"
)

func newEngine(t *testing.T, maxFiles, blockQuantity int) *storage.Engine {
	t.Helper()
	return newEngineAt(t, t.TempDir(), maxFiles, blockQuantity)
}

func newEngineAt(t *testing.T, root string, maxFiles, blockQuantity int) *storage.Engine {
	t.Helper()
	blockSize := maxFiles * serialization.InodeSize
	memorySize := blockSize * (blockQuantity + 1)

	e, err := storage.New(storage.Config{
		RootPath:          root,
		MemorySizeInBytes: memorySize,
		BlockSize:         blockSize,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

// TestS1CreateReadWrite is scenario S1.
func TestS1CreateReadWrite(t *testing.T) {
	e := newEngine(t, 8, 8)

	inode, err := fsdriver.Create(e, storage.RootIno, "a.txt", 0o644, 0, 0)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if inode.Attr.Ino != 2 {
		t.Fatalf("ino = %d, want 2", inode.Attr.Ino)
	}
	if inode.Attr.Size != 0 {
		t.Fatalf("size = %d, want 0", inode.Attr.Size)
	}

	n, err := fsdriver.Write(e, inode.Attr.Ino, []byte("hello"))
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if n != 5 {
		t.Fatalf("wrote %d bytes, want 5", n)
	}

	data, err := fsdriver.Read(e, inode.Attr.Ino)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(data) != "hello" {
		t.Fatalf("read %q, want %q", data, "hello")
	}

	got, err := fsdriver.GetAttr(e, inode.Attr.Ino)
	if err != nil {
		t.Fatalf("GetAttr: %v", err)
	}
	if got.Attr.Size != 5 {
		t.Fatalf("size after write = %d, want 5", got.Attr.Size)
	}
}

// TestS2Directory is scenario S2.
func TestS2Directory(t *testing.T) {
	e := newEngine(t, 8, 8)

	dir, err := fsdriver.Mkdir(e, storage.RootIno, "d", 0o755, 0, 0)
	if err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	if dir.Attr.Ino != 2 {
		t.Fatalf("dir ino = %d, want 2", dir.Attr.Ino)
	}

	file, err := fsdriver.Create(e, dir.Attr.Ino, "b", 0o644, 0, 0)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if file.Attr.Ino != 3 {
		t.Fatalf("file ino = %d, want 3", file.Attr.Ino)
	}

	rootEntries, err := fsdriver.ReadDir(e, storage.RootIno)
	if err != nil {
		t.Fatalf("ReadDir(root): %v", err)
	}
	names := map[string]bool{}
	for _, ent := range rootEntries {
		names[ent.Name] = true
	}
	for _, want := range []string{".", "..", "d"} {
		if !names[want] {
			t.Fatalf("root listing %v missing %q", rootEntries, want)
		}
	}

	dirEntries, err := fsdriver.ReadDir(e, dir.Attr.Ino)
	if err != nil {
		t.Fatalf("ReadDir(d): %v", err)
	}
	if len(dirEntries) != 1 || dirEntries[0].Name != "b" {
		t.Fatalf("dir listing = %v, want just b", dirEntries)
	}
}

// TestS3UnlinkAndReuse is scenario S3.
func TestS3UnlinkAndReuse(t *testing.T) {
	e := newEngine(t, 8, 8)

	file, err := fsdriver.Create(e, storage.RootIno, "a.txt", 0o644, 0, 0)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := fsdriver.Unlink(e, storage.RootIno, "a.txt"); err != nil {
		t.Fatalf("Unlink: %v", err)
	}

	if _, err := fsdriver.Lookup(e, storage.RootIno, "a.txt"); err != storage.ErrNotFound {
		t.Fatalf("Lookup after unlink = %v, want ErrNotFound", err)
	}

	reused, err := fsdriver.Create(e, storage.RootIno, "c.txt", 0o644, 0, 0)
	if err != nil {
		t.Fatalf("Create (reuse): %v", err)
	}
	if reused.Attr.Ino != file.Attr.Ino {
		t.Fatalf("reused ino = %d, want %d", reused.Attr.Ino, file.Attr.Ino)
	}
}

// TestS4RmdirAndUnlinkIsDirectory is scenario S4.
func TestS4RmdirAndUnlinkIsDirectory(t *testing.T) {
	e := newEngine(t, 8, 8)

	if _, err := fsdriver.Create(e, storage.RootIno, "f", 0o644, 0, 0); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := fsdriver.Rmdir(e, storage.RootIno, "f"); err != nil {
		t.Fatalf("Rmdir(f): %v", err)
	}

	dir, err := fsdriver.Mkdir(e, storage.RootIno, "d", 0o755, 0, 0)
	if err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	_ = dir
	if err := fsdriver.Unlink(e, storage.RootIno, "d"); err != storage.ErrIsDirectory {
		t.Fatalf("Unlink(d) = %v, want ErrIsDirectory", err)
	}
}

// TestS5Persistence is scenario S5: restart equivalence through the
// operation layer rather than the raw storage primitives.
func TestS5Persistence(t *testing.T) {
	root := t.TempDir()
	e1 := newEngineAt(t, root, 8, 8)

	if _, err := fsdriver.Mkdir(e1, storage.RootIno, "d", 0o755, 0, 0); err != nil {
		t.Fatalf("Mkdir: %v", err)
	}
	dir, err := fsdriver.Lookup(e1, storage.RootIno, "d")
	if err != nil {
		t.Fatalf("Lookup(d): %v", err)
	}
	if _, err := fsdriver.Create(e1, dir.Attr.Ino, "b", 0o644, 0, 0); err != nil {
		t.Fatalf("Create(b): %v", err)
	}

	e1.WriteToDisk()

	e2 := newEngineAt(t, root, 8, 8)
	rootEntries, err := fsdriver.ReadDir(e2, storage.RootIno)
	if err != nil {
		t.Fatalf("ReadDir(root) after restart: %v", err)
	}
	found := false
	for _, ent := range rootEntries {
		if ent.Name == "d" {
			found = true
		}
	}
	if !found {
		t.Fatalf("root listing after restart %v missing d", rootEntries)
	}

	dirEntries, err := fsdriver.ReadDir(e2, dir.Attr.Ino)
	if err != nil {
		t.Fatalf("ReadDir(d) after restart: %v", err)
	}
	if len(dirEntries) != 1 || dirEntries[0].Name != "b" {
		t.Fatalf("dir listing after restart = %v, want just b", dirEntries)
	}
}

// TestS6Capacity is scenario S6.
func TestS6Capacity(t *testing.T) {
	// max_files = 3: root occupies slot 1, so only two more creates fit.
	e := newEngine(t, 3, 4)

	if _, err := fsdriver.Create(e, storage.RootIno, "one", 0o644, 0, 0); err != nil {
		t.Fatalf("Create(one): %v", err)
	}
	if _, err := fsdriver.Create(e, storage.RootIno, "two", 0o644, 0, 0); err != nil {
		t.Fatalf("Create(two): %v", err)
	}
	if _, err := fsdriver.Create(e, storage.RootIno, "three", 0o644, 0, 0); err != storage.ErrNoSpace {
		t.Fatalf("Create(three) = %v, want ErrNoSpace", err)
	}
}

// TestS6DirectoryFull exercises a directory whose reference array is
// exhausted.
func TestS6DirectoryFull(t *testing.T) {
	e := newEngine(t, 200, 200)
	dir, err := fsdriver.Mkdir(e, storage.RootIno, "d", 0o755, 0, 0)
	if err != nil {
		t.Fatalf("Mkdir: %v", err)
	}

	for i := 0; i < serialization.RefLen; i++ {
		if _, err := fsdriver.Create(e, dir.Attr.Ino, string(rune('a'+i%26))+string(rune('A'+i/26)), 0o644, 0, 0); err != nil {
			t.Fatalf("Create #%d: %v", i, err)
		}
	}
	if _, err := fsdriver.Create(e, dir.Attr.Ino, "overflow", 0o644, 0, 0); err != storage.ErrIO {
		t.Fatalf("Create(overflow) = %v, want ErrIO", err)
	}
}

// TestSetAttr is invariant 6.
func TestSetAttr(t *testing.T) {
	e := newEngine(t, 8, 8)
	file, err := fsdriver.Create(e, storage.RootIno, "a", 0o644, 0, 0)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	var size uint64 = 42
	updated, err := fsdriver.SetAttr(e, file.Attr.Ino, fsdriver.AttrUpdate{Size: &size})
	if err != nil {
		t.Fatalf("SetAttr: %v", err)
	}
	if updated.Attr.Size != 42 {
		t.Fatalf("size = %d, want 42", updated.Attr.Size)
	}

	got, err := fsdriver.GetAttr(e, file.Attr.Ino)
	if err != nil {
		t.Fatalf("GetAttr: %v", err)
	}
	if got.Attr.Size != 42 {
		t.Fatalf("getattr size = %d, want 42", got.Attr.Size)
	}
}

// TestOpenUnknownInode exercises the NotSupported path.
func TestOpenUnknownInode(t *testing.T) {
	e := newEngine(t, 8, 8)
	if _, err := fsdriver.Open(e, 99); err != storage.ErrNotSupported {
		t.Fatalf("Open(99) = %v, want ErrNotSupported", err)
	}
}

// TestFsyncNotSupported is the fsync taxonomy row.
func TestFsyncNotSupported(t *testing.T) {
	e := newEngine(t, 8, 8)
	if err := fsdriver.Fsync(e, storage.RootIno); err != storage.ErrNotSupported {
		t.Fatalf("Fsync = %v, want ErrNotSupported", err)
	}
}
