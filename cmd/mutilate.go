package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"cvariants.dev/pkg/cvariants/internal/domain"
	m "cvariants.dev/pkg/cvariants/internal/model"
)

const mutilateLongDescription = `Inject bugs into the given seed programs.

Every variant differs from the reference by the bugs of one rule at most
per dimension, and each variant comes with a bug ledger listing what was
injected. Comparator corruption changes --num-mut comparators together;
variable misuse and assignment deletion touch a single site. With
--single, --num-mut sites of every rule are sampled instead.

Rules: comparator-corruption, variable-misuse (vm),
assignment-deletion (ad).

` + seedPathsHelp

// mutilateCmd represents the mutilate command.
var mutilateCmd = newMutilateCmd()

func newMutilateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mutilate <paths...>",
		Short: "Generate variants with injected bugs",
		Long:  mutilateLongDescription,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rules, err := domain.ParseRules(viper.GetStringSlice(mutilateRulesKey), m.MutilatorRules)
			if err != nil {
				return err
			}

			info, _ := cmd.Flags().GetBool(infoFlagName)
			check, _ := cmd.Flags().GetBool(checkFlagName)

			_, err = workflow.Mutilate(commandContext(cmd), domain.MutilateArgs{
				RunArgs: runArgs(args, rules, info, check),
				Options: domain.MutilateOptions{
					NumMut: viper.GetInt(mutilateNumMutKey),
					Single: viper.GetBool(mutilateSingleKey),
				},
				NumProgs: viper.GetInt(mutilateNumProgsKey),
			})

			return err
		},
	}

	configureMutilateFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(mutilateCmd)
}

func configureMutilateFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceP(rulesFlagName, "r", viper.GetStringSlice(mutilateRulesKey), "rules to apply (default: all)")
	bindFlagToConfig(cmd.Flags().Lookup(rulesFlagName), mutilateRulesKey)

	cmd.Flags().IntP(numMutFlagName, "n", viper.GetInt(mutilateNumMutKey), "comparators corrupted together, or sites sampled per rule with --single")
	bindFlagToConfig(cmd.Flags().Lookup(numMutFlagName), mutilateNumMutKey)

	cmd.Flags().Bool(singleFlagName, viper.GetBool(mutilateSingleKey), "sample single bug sites instead of enumerating them")
	bindFlagToConfig(cmd.Flags().Lookup(singleFlagName), mutilateSingleKey)

	cmd.Flags().Int(numProgsFlagName, viper.GetInt(mutilateNumProgsKey), "number of seed programs to sample (0: all)")
	bindFlagToConfig(cmd.Flags().Lookup(numProgsFlagName), mutilateNumProgsKey)

	cmd.Flags().BoolP(infoFlagName, "i", false, "only report how many variants would be generated")
	cmd.Flags().Bool(checkFlagName, false, "run the checker on every emitted variant")
}
