package adapter

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	m "cvariants.dev/pkg/cvariants/internal/model"
)

// ManifestFileName is the per-seed manifest written next to the variants.
const ManifestFileName = "manifest.yaml"

// MetadataStore persists the metadata that accompanies emitted variants.
type MetadataStore interface {
	SaveVarMap(ctx context.Context, dir m.Path, vm m.VarMap) error
	LoadVarMap(ctx context.Context, dir m.Path, reference, variant string) (m.VarMap, error)
	SaveBugLedger(ctx context.Context, dir m.Path, ledger m.BugLedger) error
	LoadBugLedger(ctx context.Context, dir m.Path, reference, variant string) (m.BugLedger, error)
	SaveManifest(ctx context.Context, dir m.Path, manifest m.Manifest) error
	LoadManifest(ctx context.Context, dir m.Path) (m.Manifest, error)
}

// VarMapFileName names the correspondence map between reference and variant.
func VarMapFileName(reference, variant string) string {
	return fmt.Sprintf("var_map-%s_%s.yaml.gz", reference, variant)
}

// BugLedgerFileName names the bug ledger of variant.
func BugLedgerFileName(reference, variant string) string {
	return fmt.Sprintf("bug_map-%s-%s.yaml.gz", reference, variant)
}

// YAMLMetadataStore writes gzip compressed YAML documents through a
// SourceFSAdapter. The manifest is kept uncompressed for humans.
type YAMLMetadataStore struct {
	fs SourceFSAdapter
}

// NewYAMLMetadataStore constructs a YAMLMetadataStore.
func NewYAMLMetadataStore(fs SourceFSAdapter) *YAMLMetadataStore {
	return &YAMLMetadataStore{fs: fs}
}

// SaveVarMap implements MetadataStore.
func (s *YAMLMetadataStore) SaveVarMap(ctx context.Context, dir m.Path, vm m.VarMap) error {
	return s.saveCompressed(ctx, s.fs.JoinPath(dir, VarMapFileName(vm.Reference, vm.Variant)), vm)
}

// LoadVarMap implements MetadataStore.
func (s *YAMLMetadataStore) LoadVarMap(ctx context.Context, dir m.Path, reference, variant string) (m.VarMap, error) {
	var vm m.VarMap

	err := s.loadCompressed(ctx, s.fs.JoinPath(dir, VarMapFileName(reference, variant)), &vm)

	return vm, err
}

// SaveBugLedger implements MetadataStore.
func (s *YAMLMetadataStore) SaveBugLedger(ctx context.Context, dir m.Path, ledger m.BugLedger) error {
	return s.saveCompressed(ctx, s.fs.JoinPath(dir, BugLedgerFileName(ledger.Reference, ledger.Variant)), ledger)
}

// LoadBugLedger implements MetadataStore.
func (s *YAMLMetadataStore) LoadBugLedger(ctx context.Context, dir m.Path, reference, variant string) (m.BugLedger, error) {
	var ledger m.BugLedger

	err := s.loadCompressed(ctx, s.fs.JoinPath(dir, BugLedgerFileName(reference, variant)), &ledger)

	return ledger, err
}

// SaveManifest implements MetadataStore.
func (s *YAMLMetadataStore) SaveManifest(ctx context.Context, dir m.Path, manifest m.Manifest) error {
	data, err := yaml.Marshal(manifest)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	return s.fs.WriteFile(ctx, s.fs.JoinPath(dir, ManifestFileName), data)
}

// LoadManifest implements MetadataStore.
func (s *YAMLMetadataStore) LoadManifest(ctx context.Context, dir m.Path) (m.Manifest, error) {
	var manifest m.Manifest

	data, err := s.fs.ReadFile(ctx, s.fs.JoinPath(dir, ManifestFileName))
	if err != nil {
		return manifest, err
	}

	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return manifest, fmt.Errorf("decode manifest: %w", err)
	}

	return manifest, nil
}

func (s *YAMLMetadataStore) saveCompressed(ctx context.Context, p m.Path, v any) error {
	var buf bytes.Buffer

	zw := gzip.NewWriter(&buf)
	enc := yaml.NewEncoder(zw)

	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode %s: %w", p, err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("encode %s: %w", p, err)
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("compress %s: %w", p, err)
	}

	return s.fs.WriteFile(ctx, p, buf.Bytes())
}

func (s *YAMLMetadataStore) loadCompressed(ctx context.Context, p m.Path, v any) error {
	data, err := s.fs.ReadFile(ctx, p)
	if err != nil {
		return err
	}

	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decompress %s: %w", p, err)
	}

	defer func() { _ = zr.Close() }()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return fmt.Errorf("decompress %s: %w", p, err)
	}

	if err := yaml.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode %s: %w", p, err)
	}

	return nil
}
