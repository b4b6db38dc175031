package cmd

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"cvariants.dev/pkg/cvariants/internal/domain"
	m "cvariants.dev/pkg/cvariants/internal/model"
)

func TestMutateCmd_Defaults(t *testing.T) {
	cmd, mockWorkflow, _ := newTestRootCmd(t, newMutateCmd())

	mockWorkflow.EXPECT().Mutate(mock.Anything, mock.MatchedBy(func(args domain.MutateArgs) bool {
		return len(args.Rules) == len(m.MutatorRules) &&
			args.Output == m.Path(defaultOutputDir) &&
			args.Threads == 1 &&
			!args.Policy.Exhaustive &&
			args.Policy.Percentage == 0 &&
			args.Options.Entry == "main" &&
			args.Options.MaxOrders == defaultMutateMaxOrders &&
			!args.Info
	})).Return(m.Summary{}, nil)

	cmd.SetArgs([]string{"mutate", "seeds"})
	require.NoError(t, cmd.Execute())
}

func TestMutateCmd_Flags(t *testing.T) {
	cmd, mockWorkflow, _ := newTestRootCmd(t, newMutateCmd())

	mockWorkflow.EXPECT().Mutate(mock.Anything, mock.MatchedBy(func(args domain.MutateArgs) bool {
		return assert.ObjectsAreEqual([]m.Rule{m.RuleComparatorSwap, m.RuleIfElseSwap}, args.Rules) &&
			assert.ObjectsAreEqual([]m.Path{"a.c", "b"}, args.Paths) &&
			args.Policy.Exhaustive &&
			args.Threads == 4 &&
			args.RunSeed == 7 &&
			args.Options.Entry == "run" &&
			args.Info &&
			args.Emit.Diff
	})).Return(m.Summary{}, nil)

	cmd.SetArgs([]string{
		"mutate", "-r", "comparator-swap,if", "-a", "-p", "4", "--seed", "7",
		"--entry", "run", "--info", "--diff", "a.c", "b",
	})
	require.NoError(t, cmd.Execute())
}

func TestMutateCmd_RejectsBugRule(t *testing.T) {
	cmd, _, _ := newTestRootCmd(t, newMutateCmd())

	cmd.SetArgs([]string{"mutate", "-r", "variable-misuse", "seeds"})
	err := cmd.Execute()

	require.Error(t, err)
	assert.True(t, errors.Is(err, m.ErrConfig))
}

func TestMutateCmd_RequiresPaths(t *testing.T) {
	cmd, _, _ := newTestRootCmd(t, newMutateCmd())

	cmd.SetArgs([]string{"mutate"})
	require.Error(t, cmd.Execute())
}
