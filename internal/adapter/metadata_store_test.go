package adapter

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "cvariants.dev/pkg/cvariants/internal/model"
)

func TestYAMLMetadataStore_VarMap(t *testing.T) {
	ctx := context.Background()
	dir := m.Path(t.TempDir())
	store := NewYAMLMetadataStore(NewAFSSourceStore())

	vm := m.VarMap{
		Reference: "0-0",
		Variant:   "1-0",
		Pairs: []m.VarPair{
			{Variant: "a", Reference: "a"},
			{Variant: "_int_0_", Reference: m.UnknownVar},
		},
	}

	require.NoError(t, store.SaveVarMap(ctx, dir, vm))

	raw, err := os.ReadFile(filepath.Join(string(dir), "var_map-0-0_1-0.yaml.gz"))
	require.NoError(t, err)

	zr, err := gzip.NewReader(bytes.NewReader(raw))
	require.NoError(t, err)

	text, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Contains(t, string(text), "reference: UnkVar")

	loaded, err := store.LoadVarMap(ctx, dir, "0-0", "1-0")
	require.NoError(t, err)
	assert.Equal(t, vm, loaded)
}

func TestYAMLMetadataStore_BugLedgerAndManifest(t *testing.T) {
	ctx := context.Background()
	dir := m.Path(t.TempDir())
	store := NewYAMLMetadataStore(NewAFSSourceStore())

	ledger := m.BugLedger{
		Reference: "0-0-0",
		Variant:   "0-0-1",
		Entries: []m.BugEntry{{
			Kind:     m.BugAssignmentDeletion,
			Site:     "l4-c3",
			Original: "Assignment-x = y + 1",
			Injected: "AssignmentDeletion",
		}},
	}

	require.NoError(t, store.SaveBugLedger(ctx, dir, ledger))

	_, err := os.Stat(filepath.Join(string(dir), "bug_map-0-0-0-0-0-1.yaml.gz"))
	require.NoError(t, err)

	loaded, err := store.LoadBugLedger(ctx, dir, "0-0-0", "0-0-1")
	require.NoError(t, err)
	assert.Equal(t, ledger, loaded)

	manifest := m.Manifest{
		Seed:        "prog.c",
		Fingerprint: FormatFingerprint(42),
		Reference:   "0",
		Rules:       []m.Rule{m.RuleComparatorSwap},
		Dimensions:  []m.ManifestDim{{Rule: m.RuleComparatorSwap, Size: 2, Sampled: 2}},
		Variants:    []m.ManifestVariant{{Name: "0"}, {Name: "1", Check: "pass"}},
	}

	require.NoError(t, store.SaveManifest(ctx, dir, manifest))

	got, err := store.LoadManifest(ctx, dir)
	require.NoError(t, err)
	assert.Equal(t, manifest, got)
}

func TestFingerprint(t *testing.T) {
	a, err := Fingerprint([]byte("int main(){}"))
	require.NoError(t, err)

	b, err := Fingerprint([]byte("int main(){}"))
	require.NoError(t, err)

	c, err := Fingerprint([]byte("int main(){ }"))
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, FormatFingerprint(a), 16)
}

func TestUnifiedDiff(t *testing.T) {
	ref := []byte("int f()\n{\n  return a < b;\n}\n")
	variant := []byte("int f()\n{\n  return b > a;\n}\n")

	diff, err := UnifiedDiff("0.c", ref, "1.c", variant)
	require.NoError(t, err)
	assert.Contains(t, diff, "--- 0.c")
	assert.Contains(t, diff, "+++ 1.c")
	assert.Contains(t, diff, "-  return a < b;")
	assert.Contains(t, diff, "+  return b > a;")

	same, err := UnifiedDiff("0.c", ref, "0.c", ref)
	require.NoError(t, err)
	assert.Empty(t, same)
}
