package domain

import (
	"context"
	"math/rand/v2"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cvariants.dev/pkg/cvariants/internal/adapter"
	"cvariants.dev/pkg/cvariants/internal/controller"
	"cvariants.dev/pkg/cvariants/internal/domain/mutators"
	m "cvariants.dev/pkg/cvariants/internal/model"
)

// recordingUI keeps what the workflow reports instead of drawing it.
type recordingUI struct {
	mu       sync.Mutex
	started  bool
	closed   bool
	threads  int
	seeds    []m.SeedResult
	variants []m.VariantRecord
	info     []m.SeedResult
	summary  *m.Summary
}

var _ controller.UI = (*recordingUI)(nil)

func (u *recordingUI) Start(context.Context, ...controller.StartOption) error {
	u.started = true

	return nil
}

func (u *recordingUI) Close(context.Context) { u.closed = true }

func (u *recordingUI) Wait(context.Context) {}

func (u *recordingUI) DisplayConcurrencyInfo(_ context.Context, _ string, _ int, threads int) {
	u.threads = threads
}

func (u *recordingUI) DisplaySeedResult(_ context.Context, result m.SeedResult) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.seeds = append(u.seeds, result)
}

func (u *recordingUI) DisplayVariant(_ context.Context, record m.VariantRecord) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.variants = append(u.variants, record)
}

func (u *recordingUI) DisplayInfo(_ context.Context, results []m.SeedResult) error {
	u.info = results

	return nil
}

func (u *recordingUI) DisplaySummary(_ context.Context, summary m.Summary) error {
	u.summary = &summary

	return nil
}

func newTestWorkflow(t *testing.T, seeds map[string]string) (Workflow, *recordingUI, *testEnv) {
	t.Helper()

	env := newTestEnv(t, seeds)
	ui := &recordingUI{}

	return NewWorkflow(env.fs, env.checker, ui, env.generator), ui, env
}

func TestWorkflow_Mutate(t *testing.T) {
	wf, ui, env := newTestWorkflow(t, map[string]string{
		"cmp.c":    compareSeed,
		"broken.c": "int main( {\n",
		"notes.h":  "int unused;\n",
	})

	summary, err := wf.Mutate(context.Background(), MutateArgs{
		RunArgs: RunArgs{
			Paths:    []m.Path{m.Path(env.seeds)},
			Output:   m.Path(env.out),
			Rules:    []m.Rule{m.RuleComparatorSwap},
			Threads:  2,
			RunSeed:  11,
			SpillDir: t.TempDir(),
		},
		Options: mutators.DefaultOptions(),
	})
	require.NoError(t, err)

	assert.Equal(t, "mutate", summary.Tool)
	require.Len(t, summary.Seeds, 2, "headers are not seeds")
	assert.Equal(t, "broken", summary.Seeds[0].Seed.Name)
	assert.Equal(t, m.StatusParseFailure, summary.Seeds[0].Status)
	assert.Equal(t, "cmp", summary.Seeds[1].Seed.Name)
	assert.Equal(t, m.StatusOK, summary.Seeds[1].Status)
	assert.Equal(t, 1, summary.Failed())

	assert.Equal(t, 2, summary.Variants)
	assert.Equal(t, 1, summary.Changed)
	assert.Equal(t, 2, summary.Checks[m.CheckSkipped])

	assert.True(t, ui.started)
	assert.True(t, ui.closed)
	assert.Equal(t, 2, ui.threads)
	assert.Len(t, ui.seeds, 2)
	assert.Len(t, ui.variants, 2)
	require.NotNil(t, ui.summary)
	assert.Equal(t, summary.Variants, ui.summary.Variants)
	assert.Empty(t, env.checker.calls)
}

func TestWorkflow_MutilateInfo(t *testing.T) {
	wf, ui, env := newTestWorkflow(t, map[string]string{"bug.c": bugSeed})

	summary, err := wf.Mutilate(context.Background(), MutilateArgs{
		RunArgs: RunArgs{
			Paths:    []m.Path{env.seed("bug.c")},
			Output:   m.Path(env.out),
			Rules:    m.MutilatorRules,
			Info:     true,
			SpillDir: t.TempDir(),
		},
		Options: MutilateOptions{NumMut: 1},
	})
	require.NoError(t, err)

	require.Len(t, ui.info, 1)
	assert.Nil(t, ui.summary)
	assert.Zero(t, summary.Variants)
	assert.Equal(t, 1, ui.info[0].Discovery.Counts[m.RuleComparatorCorruption])
	assert.Equal(t, 1, ui.info[0].Discovery.Counts[m.RuleAssignmentDeletion])
}

func TestWorkflow_NoSeeds(t *testing.T) {
	wf, _, env := newTestWorkflow(t, map[string]string{"only.h": "int x;\n"})

	_, err := wf.Mutate(context.Background(), MutateArgs{
		RunArgs: RunArgs{Paths: []m.Path{m.Path(env.seeds)}, Rules: m.MutatorRules, SpillDir: t.TempDir()},
	})
	require.ErrorIs(t, err, m.ErrConfig)
	assert.True(t, IsConfigError(err))
}

func TestWorkflow_CancelledContext(t *testing.T) {
	wf, _, env := newTestWorkflow(t, map[string]string{"cmp.c": compareSeed})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := wf.Mutate(ctx, MutateArgs{
		RunArgs: RunArgs{Paths: []m.Path{m.Path(env.seeds)}, Output: m.Path(env.out), Rules: m.MutatorRules, SpillDir: t.TempDir()},
		Options: mutators.DefaultOptions(),
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestWorkflow_Check(t *testing.T) {
	wf, _, env := newTestWorkflow(t, nil)
	env.checker.pass["3"] = true

	ok, err := wf.Check(context.Background(), "prog/3.c", "3")
	require.NoError(t, err)
	assert.True(t, ok)

	noChecker := NewWorkflow(env.fs, nil, &recordingUI{}, env.generator)

	_, err = noChecker.Check(context.Background(), "prog/3.c", "3")
	require.ErrorIs(t, err, adapter.ErrNoChecker)
}

func TestParseRules(t *testing.T) {
	rules, err := ParseRules(nil, m.MutilatorRules)
	require.NoError(t, err)
	assert.Equal(t, m.MutilatorRules, rules)

	rules, err = ParseRules([]string{"ad", "comparator-corruption", "asg-del"}, m.MutilatorRules)
	require.NoError(t, err)
	assert.Equal(t, []m.Rule{m.RuleAssignmentDeletion, m.RuleComparatorCorruption}, rules)

	_, err = ParseRules([]string{"comparator-swap"}, m.MutilatorRules)
	require.ErrorIs(t, err, m.ErrConfig)

	_, err = ParseRules([]string{"bogus"}, m.MutatorRules)
	require.ErrorIs(t, err, m.ErrUnknownRule)
}

func TestSampleSeeds(t *testing.T) {
	paths := []m.Path{"a.c", "b.c", "c.c", "d.c", "e.c"}

	assert.Equal(t, paths, SampleSeeds(paths, 0, rand.New(rand.NewPCG(1, 0))))
	assert.Equal(t, paths, SampleSeeds(paths, 9, rand.New(rand.NewPCG(1, 0))))

	got := SampleSeeds(paths, 3, rand.New(rand.NewPCG(1, 0)))
	require.Len(t, got, 3)
	assert.Subset(t, paths, got)
	assert.Equal(t, got, SampleSeeds(paths, 3, rand.New(rand.NewPCG(1, 0))))

	// original order is kept
	idx := func(p m.Path) int { return int(filepath.Base(string(p))[0] - 'a') }
	assert.Less(t, idx(got[0]), idx(got[1]))
	assert.Less(t, idx(got[1]), idx(got[2]))
}
