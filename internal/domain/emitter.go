package domain

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"cvariants.dev/pkg/cvariants/internal/adapter"
	m "cvariants.dev/pkg/cvariants/internal/model"
)

// Variant is one rendered program ready to be written.
type Variant struct {
	Seed      m.Seed
	Dir       m.Path
	Name      string
	Reference string
	Source    []byte
	// RefSource is the rendered reference, used for diffs.
	RefSource []byte
	VarMap    m.VarMap
	// Ledger is nil for semantics-preserving variants.
	Ledger *m.BugLedger
}

// EmitOptions selects the optional outputs.
type EmitOptions struct {
	Diff  bool
	Check bool
}

// Emitter writes variants and their metadata.
type Emitter interface {
	Emit(ctx context.Context, v Variant, opts EmitOptions) (m.VariantRecord, error)
}

type emitter struct {
	adapter.SourceFSAdapter
	adapter.MetadataStore
	checker adapter.CheckerAdapter
}

// NewEmitter creates an Emitter. checker may be nil when variants are never
// checked.
func NewEmitter(fs adapter.SourceFSAdapter, store adapter.MetadataStore, checker adapter.CheckerAdapter) Emitter {
	return &emitter{
		SourceFSAdapter: fs,
		MetadataStore:   store,
		checker:         checker,
	}
}

func (e *emitter) Emit(ctx context.Context, v Variant, opts EmitOptions) (m.VariantRecord, error) {
	file := e.JoinPath(v.Dir, v.Name+".c")

	record := m.VariantRecord{
		Seed:    v.Seed.Name,
		Name:    v.Name,
		File:    file,
		Changed: !bytes.Equal(v.Source, v.RefSource),
	}

	if err := e.WriteFile(ctx, file, v.Source); err != nil {
		return record, fmt.Errorf("%w: %w", m.ErrEmit, err)
	}

	if err := e.SaveVarMap(ctx, v.Dir, v.VarMap); err != nil {
		return record, fmt.Errorf("%w: var map %s: %w", m.ErrEmit, v.Name, err)
	}

	if v.Ledger != nil {
		record.Bugs = len(v.Ledger.Entries)

		if err := e.SaveBugLedger(ctx, v.Dir, *v.Ledger); err != nil {
			return record, fmt.Errorf("%w: bug ledger %s: %w", m.ErrEmit, v.Name, err)
		}
	}

	if opts.Diff && v.Name != v.Reference {
		diff, err := adapter.UnifiedDiff(v.Reference+".c", v.RefSource, v.Name+".c", v.Source)
		if err != nil {
			return record, fmt.Errorf("%w: %w", m.ErrEmit, err)
		}

		if err := e.WriteFile(ctx, e.JoinPath(v.Dir, v.Name+".diff"), []byte(diff)); err != nil {
			return record, fmt.Errorf("%w: %w", m.ErrEmit, err)
		}
	}

	if opts.Check && e.checker != nil {
		record.Check = e.check(ctx, file, v.Name)
	}

	slog.Debug("variant emitted", "seed", v.Seed.Name, "variant", v.Name, "changed", record.Changed, "check", record.Check.String())

	return record, nil
}

func (e *emitter) check(ctx context.Context, file m.Path, label string) m.CheckStatus {
	ok, err := e.checker.Check(ctx, file, label)
	if err != nil {
		slog.Warn("checker failed", "file", file, "label", label, "error", err)

		return m.CheckError
	}

	if ok {
		return m.CheckPassed
	}

	return m.CheckFailed
}
