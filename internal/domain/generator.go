package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"path"
	"strings"

	"cvariants.dev/pkg/cvariants/internal/adapter"
	"cvariants.dev/pkg/cvariants/internal/domain/astkit"
	"cvariants.dev/pkg/cvariants/internal/domain/mutators"
	"cvariants.dev/pkg/cvariants/internal/domain/mutilators"
	m "cvariants.dev/pkg/cvariants/internal/model"
)

// SeedArgs holds the settings shared by both tools for one seed program.
type SeedArgs struct {
	Output  m.Path
	Rules   []m.Rule
	RunSeed uint64
	Info    bool
	Emit    EmitOptions
}

// MutateSeedArgs configures the semantics-preserving generator.
type MutateSeedArgs struct {
	SeedArgs
	Policy  SamplePolicy
	Options mutators.Options
}

// MutilateSeedArgs configures the bug injecting generator.
type MutilateSeedArgs struct {
	SeedArgs
	Options MutilateOptions
}

// RecordSink receives every emitted variant.
type RecordSink func(m.VariantRecord)

// Generator runs the whole pipeline for one seed program: parse, discover,
// build the space, then rewrite and emit one variant per point. Failures are
// reported in the returned SeedResult and never abort the caller.
type Generator interface {
	Mutate(ctx context.Context, p m.Path, args MutateSeedArgs, sink RecordSink) m.SeedResult
	Mutilate(ctx context.Context, p m.Path, args MutilateSeedArgs, sink RecordSink) m.SeedResult
}

type generator struct {
	adapter.SourceFSAdapter
	adapter.CParser
	adapter.CPrinter
	adapter.MetadataStore
	Emitter
}

// NewGenerator creates a Generator from its collaborators.
func NewGenerator(
	fs adapter.SourceFSAdapter,
	parser adapter.CParser,
	printer adapter.CPrinter,
	store adapter.MetadataStore,
	emitter Emitter,
) Generator {
	return &generator{
		SourceFSAdapter: fs,
		CParser:         parser,
		CPrinter:        printer,
		MetadataStore:   store,
		Emitter:         emitter,
	}
}

// SeedName returns the output directory stem of a seed path.
func SeedName(p m.Path) string {
	base := path.Base(strings.ReplaceAll(string(p), "\\", "/"))

	return strings.TrimSuffix(base, path.Ext(base))
}

// SeedRNG derives the sampling source of one seed from its fingerprint and
// the run seed, so results do not depend on worker scheduling.
func SeedRNG(seed m.Seed, runSeed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed.Fingerprint, runSeed))
}

type loadedSeed struct {
	seed     m.Seed
	prepared m.PreparedSource
}

func (g *generator) load(ctx context.Context, p m.Path) (loadedSeed, error) {
	ls := loadedSeed{seed: m.Seed{Path: p, Name: SeedName(p)}}

	content, err := g.ReadFile(ctx, p)
	if err != nil {
		return ls, err
	}

	fp, err := adapter.Fingerprint(content)
	if err != nil {
		return ls, err
	}

	ls.seed.Fingerprint = fp
	ls.prepared = adapter.PrepareSource(content)

	return ls, nil
}

// fresh parses the seed again and braces every branch, so each variant is
// rewritten from a tree nobody else holds.
func (g *generator) fresh(ctx context.Context, ls loadedSeed) (*m.File, error) {
	file, err := g.Parse(ctx, ls.seed.Name+".c", ls.prepared)
	if err != nil {
		return nil, err
	}

	return astkit.Normalize(file), nil
}

func failed(result m.SeedResult, status m.SeedStatus, err error) m.SeedResult {
	result.Status = status
	result.Err = err

	slog.Error("seed skipped", "seed", result.Seed.Path, "status", status.String(), "error", err)

	return result
}

func (g *generator) Mutate(ctx context.Context, p m.Path, args MutateSeedArgs, sink RecordSink) m.SeedResult {
	ls, err := g.load(ctx, p)
	result := m.SeedResult{Seed: ls.seed}

	if err != nil {
		return failed(result, m.StatusParseFailure, err)
	}

	canonical, err := g.fresh(ctx, ls)
	if err != nil {
		return failed(result, m.StatusParseFailure, err)
	}

	reg := astkit.NewRegistry()

	disc := mutators.Discover(reg, canonical, args.Options)

	plan, err := NewMutatePlan(disc, args.Rules)
	if err != nil {
		return failed(result, m.StatusRewriteFailure, err)
	}

	space, err := NewSpace(plan.Dims, args.Policy, SeedRNG(ls.seed, args.RunSeed))
	if err != nil {
		return failed(result, m.StatusRewriteFailure, err)
	}

	result.Discovery = m.DiscoveryReport{
		Counts:      make(map[m.Rule]int, len(args.Rules)),
		Blocks:      len(disc.Blocks),
		Reorderings: disc.Reorderings(),
		Variables:   len(disc.Vars),
	}

	for _, r := range args.Rules {
		result.Discovery.Counts[r] = disc.Count(r)
	}

	fillSpace(&result.Discovery, space)
	logDiscovery(ls.seed, result.Discovery, disc.Excluded)

	if args.Info {
		return result
	}

	build := func(file *m.File, v m.VariantDescriptor) (*m.File, []m.BugEntry, error) {
		sels, err := plan.Selections(v.Point)
		if err != nil {
			return nil, nil, err
		}

		for _, rule := range plan.Rules {
			file, err = mutators.Apply(reg, file, rule, sels[rule], args.Options)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: %s: %w", m.ErrRewrite, rule, err)
			}
		}

		return file, nil, nil
	}

	return g.emitSpace(ctx, ls, space, build, false, args.SeedArgs, result, sink)
}

func (g *generator) Mutilate(ctx context.Context, p m.Path, args MutilateSeedArgs, sink RecordSink) m.SeedResult {
	ls, err := g.load(ctx, p)
	result := m.SeedResult{Seed: ls.seed}

	if err != nil {
		return failed(result, m.StatusParseFailure, err)
	}

	canonical, err := g.fresh(ctx, ls)
	if err != nil {
		return failed(result, m.StatusParseFailure, err)
	}

	reg := astkit.NewRegistry()

	disc := mutilators.Discover(reg, canonical)

	plan, err := NewMutilatePlan(disc, args.Rules, args.Options, SeedRNG(ls.seed, args.RunSeed))
	if err != nil {
		return failed(result, m.StatusRewriteFailure, err)
	}

	space, err := NewSpace(plan.Dims, SamplePolicy{Exhaustive: true}, nil)
	if err != nil {
		return failed(result, m.StatusRewriteFailure, err)
	}

	result.Discovery = m.DiscoveryReport{
		Counts:    make(map[m.Rule]int, len(args.Rules)),
		Variables: len(disc.Vars),
	}

	for _, r := range args.Rules {
		result.Discovery.Counts[r] = disc.Count(r)
	}

	fillSpace(&result.Discovery, space)
	logDiscovery(ls.seed, result.Discovery, 0)

	if args.Info {
		return result
	}

	build := func(file *m.File, v m.VariantDescriptor) (*m.File, []m.BugEntry, error) {
		sel, err := plan.Selection(v.Point)
		if err != nil {
			return nil, nil, err
		}

		out, entries := mutilators.Apply(reg, file, sel, g.Expr)

		return out, entries, nil
	}

	return g.emitSpace(ctx, ls, space, build, true, args.SeedArgs, result, sink)
}

func fillSpace(report *m.DiscoveryReport, space *Space) {
	report.TotalSpace, _ = space.FullSize()
	report.SampledSpace, _ = space.Size()
}

func logDiscovery(seed m.Seed, report m.DiscoveryReport, excluded int) {
	attrs := []any{"seed", seed.Name, "variables", report.Variables, "space", report.TotalSpace, "kept", report.SampledSpace}
	for rule, n := range report.Counts {
		attrs = append(attrs, string(rule), n)
	}

	if report.Blocks > 0 || excluded > 0 {
		attrs = append(attrs, "blocks", report.Blocks, "reorderings", report.Reorderings, "excluded_blocks", excluded)
	}

	slog.Debug("discovery finished", attrs...)
}

type variantBuilder func(file *m.File, v m.VariantDescriptor) (*m.File, []m.BugEntry, error)

func (g *generator) emitSpace(
	ctx context.Context,
	ls loadedSeed,
	space *Space,
	build variantBuilder,
	ledgers bool,
	args SeedArgs,
	result m.SeedResult,
	sink RecordSink,
) m.SeedResult {
	dir := g.JoinPath(args.Output, ls.seed.Name)
	ref := space.Reference()
	result.Reference = ref.Name

	includes := ls.prepared.Includes()

	render := func(v m.VariantDescriptor) (*m.File, []byte, []m.BugEntry, error) {
		file, err := g.fresh(ctx, ls)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("%w: reparse for %s: %w", m.ErrRewrite, v.Name, err)
		}

		file, entries, err := build(file, v)
		if err != nil {
			return nil, nil, nil, err
		}

		return file, g.Print(includes, file), entries, nil
	}

	refFile, refSource, _, err := render(ref)
	if err != nil {
		return failed(result, m.StatusRewriteFailure, err)
	}

	refVars := astkit.CollectVars(refFile)

	manifest := m.Manifest{
		Seed:        string(ls.seed.Path),
		Fingerprint: adapter.FormatFingerprint(ls.seed.Fingerprint),
		Reference:   ref.Name,
		Rules:       args.Rules,
	}

	for _, a := range space.Axes {
		manifest.Dimensions = append(manifest.Dimensions, m.ManifestDim{Rule: a.Dim.Rule, Size: a.Dim.Size, Sampled: int(a.Len())})
	}

	err = space.Each(func(v m.VariantDescriptor) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		file, source, entries := refFile, refSource, []m.BugEntry(nil)

		if v.Name != ref.Name {
			var err error

			file, source, entries, err = render(v)
			if err != nil {
				return err
			}
		}

		variant := Variant{
			Seed:      ls.seed,
			Dir:       dir,
			Name:      v.Name,
			Reference: ref.Name,
			Source:    source,
			RefSource: refSource,
			VarMap:    CorrespondenceMap(ref.Name, v.Name, refVars, astkit.CollectVars(file)),
		}

		if ledgers {
			variant.Ledger = &m.BugLedger{Reference: ref.Name, Variant: v.Name, Entries: entries}
		}

		record, err := g.Emit(ctx, variant, args.Emit)
		if err != nil {
			return err
		}

		result.Variants++

		entry := m.ManifestVariant{Name: v.Name}
		if record.Check != m.CheckSkipped {
			entry.Check = record.Check.String()
		}

		manifest.Variants = append(manifest.Variants, entry)

		if sink != nil {
			sink(record)
		}

		return nil
	})

	if err == nil {
		if err = g.SaveManifest(ctx, dir, manifest); err != nil {
			err = fmt.Errorf("%w: manifest: %w", m.ErrEmit, err)
		}
	}

	switch {
	case err == nil:
		slog.Info("seed done", "seed", ls.seed.Name, "variants", result.Variants)

		return result
	case errors.Is(err, m.ErrEmit):
		return failed(result, m.StatusEmitFailure, err)
	default:
		return failed(result, m.StatusRewriteFailure, err)
	}
}
