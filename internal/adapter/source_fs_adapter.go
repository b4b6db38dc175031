// Package adapter contains the infrastructure collaborators of cvariants:
// the C front end, storage, metadata codecs and the external checker.
package adapter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"

	m "cvariants.dev/pkg/cvariants/internal/model"
)

// SourceFSAdapter abstracts where seeds are read from and variants are
// written to, so the domain never touches os directly. Paths may be local
// paths or any URL the afs backends understand.
type SourceFSAdapter interface {
	// ListSeeds returns the .c files directly under root, sorted. A root
	// that is itself a .c file is returned as the only seed.
	ListSeeds(ctx context.Context, root m.Path) ([]m.Path, error)

	// ReadFile loads a file.
	ReadFile(ctx context.Context, p m.Path) ([]byte, error)

	// WriteFile stores content at p, creating parent directories.
	WriteFile(ctx context.Context, p m.Path, content []byte) error

	// Exists reports whether p exists.
	Exists(ctx context.Context, p m.Path) (bool, error)

	// EnsureDir creates the directory p when missing.
	EnsureDir(ctx context.Context, p m.Path) error

	// JoinPath joins path elements onto base.
	JoinPath(base m.Path, elem ...string) m.Path
}

// AFSSourceStore implements SourceFSAdapter on top of viant/afs.
type AFSSourceStore struct {
	fs afs.Service
}

// NewAFSSourceStore constructs an AFSSourceStore.
func NewAFSSourceStore() *AFSSourceStore {
	return &AFSSourceStore{fs: afs.New()}
}

// location turns relative local paths into absolute ones; URLs are kept.
func location(p m.Path) string {
	s := string(p)
	if strings.Contains(s, "://") || filepath.IsAbs(s) {
		return s
	}

	if abs, err := filepath.Abs(s); err == nil {
		return abs
	}

	return s
}

// ListSeeds lists the seed programs under root.
func (a *AFSSourceStore) ListSeeds(ctx context.Context, root m.Path) ([]m.Path, error) {
	base := location(root)

	if strings.HasSuffix(base, ".c") {
		ok, err := a.fs.Exists(ctx, base)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", root, err)
		}

		if !ok {
			return nil, fmt.Errorf("seed %s: %w", root, os.ErrNotExist)
		}

		return []m.Path{m.Path(base)}, nil
	}

	var seeds []m.Path

	var visitor storage.OnVisit = func(_ context.Context, baseURL, parent string, info os.FileInfo, _ io.Reader) (bool, error) {
		if info.IsDir() {
			return false, nil
		}

		if path.Ext(info.Name()) != ".c" {
			return true, nil
		}

		elems := []string{info.Name()}
		if parent != "" {
			elems = []string{parent, info.Name()}
		}

		seeds = append(seeds, m.Path(url.Join(baseURL, elems...)))

		return true, nil
	}

	if err := a.fs.Walk(ctx, base, visitor); err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	slices.Sort(seeds)

	return seeds, nil
}

// ReadFile downloads the content of p.
func (a *AFSSourceStore) ReadFile(ctx context.Context, p m.Path) ([]byte, error) {
	data, err := a.fs.DownloadWithURL(ctx, location(p))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p, err)
	}

	return data, nil
}

// WriteFile uploads content to p.
func (a *AFSSourceStore) WriteFile(ctx context.Context, p m.Path, content []byte) error {
	target := location(p)

	if err := a.EnsureDir(ctx, m.Path(parentOf(target))); err != nil {
		return err
	}

	if err := a.fs.Upload(ctx, target, 0o644, bytes.NewReader(content)); err != nil {
		return fmt.Errorf("write %s: %w", p, err)
	}

	return nil
}

// Exists reports whether p exists.
func (a *AFSSourceStore) Exists(ctx context.Context, p m.Path) (bool, error) {
	ok, err := a.fs.Exists(ctx, location(p))
	if err != nil {
		return false, fmt.Errorf("stat %s: %w", p, err)
	}

	return ok, nil
}

// EnsureDir creates directory p when missing.
func (a *AFSSourceStore) EnsureDir(ctx context.Context, p m.Path) error {
	dir := location(p)

	ok, err := a.fs.Exists(ctx, dir)
	if err != nil {
		return fmt.Errorf("stat %s: %w", p, err)
	}

	if ok {
		return nil
	}

	if err := a.fs.Create(ctx, dir, 0o755|os.ModeDir, true); err != nil {
		return fmt.Errorf("mkdir %s: %w", p, err)
	}

	return nil
}

// JoinPath joins elem onto base.
func (a *AFSSourceStore) JoinPath(base m.Path, elem ...string) m.Path {
	return m.Path(url.Join(string(base), elem...))
}

func parentOf(target string) string {
	i := strings.LastIndex(target, "/")
	if i <= 0 {
		return target
	}

	return target[:i]
}
