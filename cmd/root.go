// Package cmd provides the root command and CLI setup for cvariants.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"cvariants.dev/pkg/cvariants/internal/adapter"
	"cvariants.dev/pkg/cvariants/internal/controller"
	"cvariants.dev/pkg/cvariants/internal/domain"
	m "cvariants.dev/pkg/cvariants/internal/model"
)

var fsAdapter adapter.SourceFSAdapter
var parser adapter.CParser
var printer adapter.CPrinter
var metadataStore adapter.MetadataStore
var checker adapter.CheckerAdapter
var emitter domain.Emitter
var generator domain.Generator
var workflow domain.Workflow
var ui controller.UI

var verboseFlag bool

func init() {
	configureRootFlags(rootCmd)

	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	fsAdapter = adapter.NewAFSSourceStore()
	parser = adapter.NewTreeSitterCParser()
	printer = adapter.NewSourcePrinter()
	metadataStore = adapter.NewYAMLMetadataStore(fsAdapter)
	checker = configuredChecker{}
	emitter = domain.NewEmitter(fsAdapter, metadataStore, checker)
	generator = domain.NewGenerator(fsAdapter, parser, printer, metadataStore, emitter)
	workflow = domain.NewWorkflow(fsAdapter, checker, ui, generator)
}

// configuredChecker resolves the checker command at call time so flags,
// environment and config file all apply.
type configuredChecker struct{}

func (configuredChecker) Check(ctx context.Context, file m.Path, label string) (bool, error) {
	return adapter.NewExecChecker(viper.GetString(checkCommandKey)).Check(ctx, file, label)
}

const seedPathsHelp = `Each path is either a .c file or a directory whose top-level .c files
are used as seed programs.`

const rootLongDescription = `cvariants generates variants of small C programs.

The mutate command applies semantics-preserving rewrites (comparator swaps,
if/else swaps, increment rewrites, a dummy variable, declaration reordering,
for-to-while) and emits every combination or a sample of them. The mutilate
command injects single bugs (comparator corruption, variable misuse,
assignment deletion) and records them in a bug ledger.

` + seedPathsHelp

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cvariants",
		Short: "C program variant generator",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger("", verboseFlag)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
		SilenceUsage: true,
	}
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String(outputFlagName, viper.GetString(outputFlagName), "output directory for generated variants")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(outputFlagName), outputFlagName)

	cmd.PersistentFlags().IntP(parallelFlagName, "p", viper.GetInt(runParallelConfigKey), "number of seed programs processed in parallel")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(parallelFlagName), runParallelConfigKey)

	cmd.PersistentFlags().Uint64(seedFlagName, viper.GetUint64(runSeedConfigKey), "random seed for sampling (0 picks one from the clock)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(seedFlagName), runSeedConfigKey)

	cmd.PersistentFlags().String(checkerFlagName, viper.GetString(checkCommandKey), "checker executable run as: checker <file> <label> <status-file>")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(checkerFlagName), checkCommandKey)

	cmd.PersistentFlags().Bool(diffFlagName, viper.GetBool(emitDiffConfigKey), "write a unified diff of every variant against the reference")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(diffFlagName), emitDiffConfigKey)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", false, "log at debug level")
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		stop()
		os.Exit(1)
	}
}

func parsePaths(args []string) []m.Path {
	paths := make([]m.Path, 0, len(args))
	for _, arg := range args {
		paths = append(paths, m.Path(arg))
	}

	return paths
}

// runArgs collects the settings shared by both generators.
func runArgs(args []string, rules []m.Rule, info, check bool) domain.RunArgs {
	return domain.RunArgs{
		Paths:   parsePaths(args),
		Output:  m.Path(viper.GetString(outputFlagName)),
		Rules:   rules,
		Threads: viper.GetInt(runParallelConfigKey),
		RunSeed: viper.GetUint64(runSeedConfigKey),
		Info:    info,
		Emit: domain.EmitOptions{
			Diff:  viper.GetBool(emitDiffConfigKey),
			Check: check,
		},
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}

	return context.Background()
}
