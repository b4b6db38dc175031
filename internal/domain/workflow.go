package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"cvariants.dev/pkg/cvariants/internal/adapter"
	"cvariants.dev/pkg/cvariants/internal/controller"
	"cvariants.dev/pkg/cvariants/internal/domain/mutators"
	m "cvariants.dev/pkg/cvariants/internal/model"
	"cvariants.dev/pkg/cvariants/pkg"
)

// RunArgs holds the batch settings shared by both tools.
type RunArgs struct {
	Paths    []m.Path
	Output   m.Path
	Rules    []m.Rule
	Threads  int
	RunSeed  uint64
	Info     bool
	Emit     EmitOptions
	SpillDir string
}

// MutateArgs configures a semantics-preserving run.
type MutateArgs struct {
	RunArgs
	Policy  SamplePolicy
	Options mutators.Options
}

// MutilateArgs configures a bug injection run.
type MutilateArgs struct {
	RunArgs
	Options MutilateOptions
	// NumProgs caps the number of seed programs processed; 0 keeps all.
	NumProgs int
}

// Workflow drives a batch of seed programs through one of the tools.
type Workflow interface {
	Mutate(ctx context.Context, args MutateArgs) (m.Summary, error)
	Mutilate(ctx context.Context, args MutilateArgs) (m.Summary, error)
	Check(ctx context.Context, file m.Path, label string) (bool, error)
}

type workflow struct {
	adapter.SourceFSAdapter
	adapter.CheckerAdapter
	controller.UI
	Generator
}

// NewWorkflow creates a Workflow. checker may be nil when no checker is
// configured.
func NewWorkflow(
	fs adapter.SourceFSAdapter,
	checker adapter.CheckerAdapter,
	ui controller.UI,
	generator Generator,
) Workflow {
	return &workflow{
		SourceFSAdapter: fs,
		CheckerAdapter:  checker,
		UI:              ui,
		Generator:       generator,
	}
}

// ParseRules resolves rule names, drops duplicates and checks that every
// rule belongs to allowed. An empty list selects all of allowed.
func ParseRules(names []string, allowed []m.Rule) ([]m.Rule, error) {
	if len(names) == 0 {
		return slices.Clone(allowed), nil
	}

	rules := make([]m.Rule, 0, len(names))

	for _, name := range names {
		r, err := m.ParseRule(name)
		if err != nil {
			return nil, err
		}

		if !slices.Contains(allowed, r) {
			return nil, fmt.Errorf("%w: %s is not available for this tool", m.ErrConfig, r)
		}

		if !slices.Contains(rules, r) {
			rules = append(rules, r)
		}
	}

	return rules, nil
}

func (w *workflow) Check(ctx context.Context, file m.Path, label string) (bool, error) {
	if w.CheckerAdapter == nil {
		return false, adapter.ErrNoChecker
	}

	return w.CheckerAdapter.Check(ctx, file, label)
}

func (w *workflow) Mutate(ctx context.Context, args MutateArgs) (m.Summary, error) {
	return w.run(ctx, "mutate", args.RunArgs, 0, func(ctx context.Context, p m.Path, runSeed uint64, sink RecordSink) m.SeedResult {
		return w.Generator.Mutate(ctx, p, MutateSeedArgs{
			SeedArgs: seedArgs(args.RunArgs, runSeed),
			Policy:   args.Policy,
			Options:  args.Options,
		}, sink)
	})
}

func (w *workflow) Mutilate(ctx context.Context, args MutilateArgs) (m.Summary, error) {
	return w.run(ctx, "mutilate", args.RunArgs, args.NumProgs, func(ctx context.Context, p m.Path, runSeed uint64, sink RecordSink) m.SeedResult {
		return w.Generator.Mutilate(ctx, p, MutilateSeedArgs{
			SeedArgs: seedArgs(args.RunArgs, runSeed),
			Options:  args.Options,
		}, sink)
	})
}

func seedArgs(args RunArgs, runSeed uint64) SeedArgs {
	return SeedArgs{
		Output:  args.Output,
		Rules:   args.Rules,
		RunSeed: runSeed,
		Info:    args.Info,
		Emit:    args.Emit,
	}
}

type seedRunner func(ctx context.Context, p m.Path, runSeed uint64, sink RecordSink) m.SeedResult

func (w *workflow) run(ctx context.Context, tool string, args RunArgs, numProgs int, runSeed seedRunner) (m.Summary, error) {
	summary := m.Summary{Tool: tool, Checks: make(map[m.CheckStatus]int)}

	seed := args.RunSeed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	slog.Info("run started", "tool", tool, "run_seed", seed, "rules", args.Rules)

	if err := ctx.Err(); err != nil {
		return summary, err
	}

	paths, err := w.collectSeeds(ctx, args.Paths)
	if err != nil {
		return summary, err
	}

	paths = SampleSeeds(paths, numProgs, rand.New(rand.NewPCG(seed, 0)))

	threads := max(args.Threads, 1)

	startOpt := controller.WithGenerateMode()
	if args.Info {
		startOpt = controller.WithInfoMode()
	}

	if err := w.Start(ctx, startOpt); err != nil {
		return summary, fmt.Errorf("start ui: %w", err)
	}

	w.DisplayConcurrencyInfo(ctx, tool, len(paths), threads)

	records, err := pkg.NewFileSpill[m.VariantRecord](args.SpillDir)
	if err != nil {
		w.Close(ctx)

		return summary, err
	}

	defer func() {
		if err := records.Remove(); err != nil {
			slog.Warn("failed to remove record spill", "path", records.Path(), "error", err)
		}
	}()

	sink := func(record m.VariantRecord) {
		if err := records.Append(record); err != nil {
			slog.Warn("failed to spill variant record", "variant", record.Name, "error", err)
		}

		w.DisplayVariant(ctx, record)
	}

	results := w.runSeeds(ctx, paths, threads, seed, runSeed, sink)

	w.Close(ctx)

	summary.Seeds = results

	if err := ctx.Err(); err != nil {
		return summary, err
	}

	if args.Info {
		return summary, w.DisplayInfo(ctx, results)
	}

	if err := tally(&summary, records); err != nil {
		return summary, err
	}

	if err := w.DisplaySummary(ctx, summary); err != nil {
		return summary, err
	}

	if failed := summary.Failed(); failed > 0 {
		slog.Warn("some seed programs were skipped", "failed", failed, "total", len(results))
	}

	return summary, nil
}

func (w *workflow) collectSeeds(ctx context.Context, roots []m.Path) ([]m.Path, error) {
	var paths []m.Path

	for _, root := range roots {
		seeds, err := w.ListSeeds(ctx, root)
		if err != nil {
			return nil, fmt.Errorf("list seeds: %w", err)
		}

		for _, s := range seeds {
			if !slices.Contains(paths, s) {
				paths = append(paths, s)
			}
		}
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no .c seed programs found", m.ErrConfig)
	}

	return paths, nil
}

// runSeeds processes every seed, at most threads at a time. Results keep
// the order of paths.
func (w *workflow) runSeeds(ctx context.Context, paths []m.Path, threads int, seed uint64, runSeed seedRunner, sink RecordSink) []m.SeedResult {
	results := make([]m.SeedResult, len(paths))

	var (
		group  errgroup.Group
		sinkMu sync.Mutex
	)

	group.SetLimit(threads)

	lockedSink := func(record m.VariantRecord) {
		sinkMu.Lock()
		defer sinkMu.Unlock()

		sink(record)
	}

	for i, p := range paths {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = m.SeedResult{Seed: m.Seed{Path: p, Name: SeedName(p)}, Status: m.StatusRewriteFailure, Err: err}

				return nil
			}

			results[i] = runSeed(ctx, p, seed, lockedSink)
			w.DisplaySeedResult(ctx, results[i])

			return nil
		})
	}

	_ = group.Wait()

	return results
}

func tally(summary *m.Summary, records pkg.FileSpill[m.VariantRecord]) error {
	err := records.Range(func(_ uint64, r m.VariantRecord) error {
		summary.Variants++
		summary.Bugs += r.Bugs
		summary.Checks[r.Check]++

		if r.Changed {
			summary.Changed++
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("read variant records: %w", err)
	}

	return nil
}

// SampleSeeds keeps n randomly chosen paths in their original order; n <= 0
// or n >= len(paths) keeps all of them.
func SampleSeeds(paths []m.Path, n int, rng *rand.Rand) []m.Path {
	if n <= 0 || n >= len(paths) {
		return paths
	}

	idx := rng.Perm(len(paths))[:n]
	slices.Sort(idx)

	out := make([]m.Path, n)
	for i, j := range idx {
		out[i] = paths[j]
	}

	return out
}

// IsConfigError reports whether err was caused by invalid settings.
func IsConfigError(err error) bool {
	return errors.Is(err, m.ErrConfig) || errors.Is(err, m.ErrUnknownRule)
}
