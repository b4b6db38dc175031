package adapter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	m "cvariants.dev/pkg/cvariants/internal/model"
)

func TestAFSSourceStore_ListSeeds(t *testing.T) {
	t.Run("lists top level c files sorted", func(t *testing.T) {
		store := NewAFSSourceStore()

		root := t.TempDir()
		writeTestFile(t, filepath.Join(root, "b.c"), "int main(){return 0;}\n")
		writeTestFile(t, filepath.Join(root, "a.c"), "int main(){return 0;}\n")
		writeTestFile(t, filepath.Join(root, "notes.txt"), "skip me\n")

		nestedDir := filepath.Join(root, "nested")
		mustMkdir(t, nestedDir)
		writeTestFile(t, filepath.Join(nestedDir, "child.c"), "int main(){return 0;}\n")

		seeds, err := store.ListSeeds(context.Background(), m.Path(root))
		if err != nil {
			t.Fatalf("ListSeeds() error = %v", err)
		}

		if len(seeds) != 2 {
			t.Fatalf("ListSeeds() = %v, want 2 seeds", seeds)
		}

		if filepath.Base(string(seeds[0])) != "a.c" || filepath.Base(string(seeds[1])) != "b.c" {
			t.Fatalf("ListSeeds() = %v, want a.c then b.c", seeds)
		}
	})

	t.Run("single file root", func(t *testing.T) {
		store := NewAFSSourceStore()

		file := filepath.Join(t.TempDir(), "prog.c")
		writeTestFile(t, file, "int main(){return 0;}\n")

		seeds, err := store.ListSeeds(context.Background(), m.Path(file))
		if err != nil {
			t.Fatalf("ListSeeds() error = %v", err)
		}

		if len(seeds) != 1 || string(seeds[0]) != file {
			t.Fatalf("ListSeeds() = %v, want [%s]", seeds, file)
		}
	})

	t.Run("missing file root", func(t *testing.T) {
		store := NewAFSSourceStore()

		_, err := store.ListSeeds(context.Background(), m.Path(filepath.Join(t.TempDir(), "missing.c")))
		if err == nil {
			t.Fatalf("ListSeeds() expected error for missing seed")
		}
	})
}

func TestAFSSourceStore_WriteAndRead(t *testing.T) {
	store := NewAFSSourceStore()
	ctx := context.Background()

	root := t.TempDir()
	target := store.JoinPath(m.Path(root), "out", "prog", "0-1.c")

	if err := store.WriteFile(ctx, target, []byte("int x;\n")); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	ok, err := store.Exists(ctx, target)
	if err != nil || !ok {
		t.Fatalf("Exists() = %v, %v; want true", ok, err)
	}

	data, err := store.ReadFile(ctx, target)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	if string(data) != "int x;\n" {
		t.Fatalf("ReadFile() = %q", data)
	}

	onDisk, err := os.ReadFile(filepath.Join(root, "out", "prog", "0-1.c"))
	if err != nil {
		t.Fatalf("file not written to local disk: %v", err)
	}

	if string(onDisk) != "int x;\n" {
		t.Fatalf("on disk content = %q", onDisk)
	}
}

func TestAFSSourceStore_EnsureDir(t *testing.T) {
	store := NewAFSSourceStore()
	ctx := context.Background()

	dir := filepath.Join(t.TempDir(), "a", "b")

	if err := store.EnsureDir(ctx, m.Path(dir)); err != nil {
		t.Fatalf("EnsureDir() error = %v", err)
	}

	if err := store.EnsureDir(ctx, m.Path(dir)); err != nil {
		t.Fatalf("EnsureDir() second call error = %v", err)
	}

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("EnsureDir() did not create %s", dir)
	}
}

func writeTestFile(t *testing.T, path, contents string) {
	t.Helper()

	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func mustMkdir(t *testing.T, path string) {
	t.Helper()

	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
}
