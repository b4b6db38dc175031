package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"cvariants.dev/pkg/cvariants/internal/domain"
	"cvariants.dev/pkg/cvariants/internal/domain/mutators"
	m "cvariants.dev/pkg/cvariants/internal/model"
)

const mutateLongDescription = `Generate semantics-preserving variants of the given seed programs.

Every rule contributes one or more dimensions; a variant is one point of
their product. Small spaces are enumerated in full with --enumerate-all,
otherwise each dimension is sampled on its own (10% below 100000 points,
1% beyond, or --percentage).

Rules: comparator-swap, if-else-swap (if), incdec-swap (io),
dummy-variable (dv), reorder-decls (rd), for-to-while (fw).

` + seedPathsHelp

// mutateCmd represents the mutate command.
var mutateCmd = newMutateCmd()

func newMutateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mutate <paths...>",
		Short: "Generate semantics-preserving variants",
		Long:  mutateLongDescription,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, err := domain.ParseRules(viper.GetStringSlice(mutateRulesKey), m.MutatorRules)
			if err != nil {
				return err
			}

			info, _ := cmd.Flags().GetBool(infoFlagName)
			check, _ := cmd.Flags().GetBool(checkFlagName)

			_, err = workflow.Mutate(commandContext(cmd), domain.MutateArgs{
				RunArgs: runArgs(args, rules, info, check),
				Policy: domain.SamplePolicy{
					Exhaustive: viper.GetBool(mutateEnumerateAllKey),
					Percentage: viper.GetFloat64(mutatePercentageKey),
				},
				Options: mutators.Options{
					Entry:     viper.GetString(mutateEntryKey),
					MaxOrders: viper.GetInt(mutateMaxOrdersKey),
				},
			})

			return err
		},
	}

	configureMutateFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(mutateCmd)
}

func configureMutateFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceP(rulesFlagName, "r", viper.GetStringSlice(mutateRulesKey), "rules to apply (default: all)")
	bindFlagToConfig(cmd.Flags().Lookup(rulesFlagName), mutateRulesKey)

	cmd.Flags().Float64(percentageFlagName, viper.GetFloat64(mutatePercentageKey), "share of every dimension to keep, in (0, 1]")
	bindFlagToConfig(cmd.Flags().Lookup(percentageFlagName), mutatePercentageKey)

	cmd.Flags().BoolP(enumerateAllFlagName, "a", viper.GetBool(mutateEnumerateAllKey), "emit every point of the variant space")
	bindFlagToConfig(cmd.Flags().Lookup(enumerateAllFlagName), mutateEnumerateAllKey)

	cmd.Flags().String(entryFlagName, viper.GetString(mutateEntryKey), "function receiving the dummy variable")
	bindFlagToConfig(cmd.Flags().Lookup(entryFlagName), mutateEntryKey)

	cmd.Flags().Int(maxOrdersFlagName, viper.GetInt(mutateMaxOrdersKey), "maximum declaration orders kept per block (0: no limit)")
	bindFlagToConfig(cmd.Flags().Lookup(maxOrdersFlagName), mutateMaxOrdersKey)

	cmd.Flags().BoolP(infoFlagName, "i", false, "only report how many variants would be generated")
	cmd.Flags().Bool(checkFlagName, false, "run the checker on every emitted variant")
}
