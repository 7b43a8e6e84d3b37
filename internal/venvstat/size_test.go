package venvstat

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDirSize(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.py"), 100)
	writeFile(t, filepath.Join(root, "sub", "b.so"), 2048)
	writeFile(t, filepath.Join(root, "sub", "deep", "deeper", "c.txt"), 7)
	writeFile(t, filepath.Join(root, "empty"), 0)

	if got, want := DirSize(root), int64(100+2048+7); got != want {
		t.Errorf("DirSize() = %d, want %d", got, want)
	}
}

func TestDirSizeMissingPath(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does", "not", "exist")

	if got := DirSize(missing); got != 0 {
		t.Errorf("DirSize(missing) = %d, want 0", got)
	}

	usage, err := Measure(context.Background(), missing)
	if err != nil {
		t.Fatalf("Measure(missing) error = %v", err)
	}

	if usage != (Usage{}) {
		t.Errorf("Measure(missing) = %+v, want zero", usage)
	}
}

func TestDirSizeRegularFileRoot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "module.py")
	writeFile(t, path, 321)

	if got := DirSize(path); got != 321 {
		t.Errorf("DirSize(file) = %d, want 321", got)
	}
}

func TestDirSizeSkipsSymlinks(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()

	writeFile(t, filepath.Join(root, "real.bin"), 500)
	writeFile(t, filepath.Join(outside, "shared.bin"), 10_000)

	// Link to a file, a directory outside the tree and a cycle back to root.
	symlink(t, filepath.Join(outside, "shared.bin"), filepath.Join(root, "file-link"))
	symlink(t, outside, filepath.Join(root, "dir-link"))
	symlink(t, root, filepath.Join(root, "loop"))

	if got := DirSize(root); got != 500 {
		t.Errorf("DirSize() = %d, want 500", got)
	}
}

func TestDirSizeSymlinkRoot(t *testing.T) {
	target := t.TempDir()
	writeFile(t, filepath.Join(target, "x"), 42)

	link := filepath.Join(t.TempDir(), "link")
	symlink(t, target, link)

	if got := DirSize(link); got != 0 {
		t.Errorf("DirSize(symlink) = %d, want 0", got)
	}
}

func TestMeasureCounts(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "one"), 1)
	writeFile(t, filepath.Join(root, "two", "three"), 2)
	writeFile(t, filepath.Join(root, "two", "four"), 3)

	usage, err := Measure(context.Background(), root)
	if err != nil {
		t.Fatalf("Measure() error = %v", err)
	}

	want := Usage{Bytes: 6, Files: 3}
	if usage != want {
		t.Errorf("Measure() = %+v, want %+v", usage, want)
	}
}

func TestMeasureCancelled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a"), 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Measure(ctx, root)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Measure() error = %v, want context.Canceled", err)
	}
}

func TestMeasureSkipsUnreadable(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced for root")
	}

	root := t.TempDir()
	writeFile(t, filepath.Join(root, "ok", "a.py"), 700)
	writeFile(t, filepath.Join(root, "locked", "hidden.py"), 5000)
	lock(t, filepath.Join(root, "locked"))

	usage, err := Measure(context.Background(), root)
	if err != nil {
		t.Fatalf("Measure() error = %v", err)
	}

	if usage.Bytes != 700 || usage.Files != 1 {
		t.Errorf("Measure() = %+v, want 700 bytes in 1 file", usage)
	}

	if usage.Errors == 0 {
		t.Error("Errors = 0, want the locked directory counted")
	}
}
