package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	m "cvariants.dev/pkg/cvariants/internal/model"
)

var errCheckFailed = errors.New("checker rejected the program")

// checkCmd represents the check command.
var checkCmd = newCheckCmd()

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <file> <label>",
		Short: "Run the configured checker on one program",
		Long: `Run the checker executable (--checker or check.command) on a C file and
print its verdict. The command fails when the checker rejects the program.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := workflow.Check(commandContext(cmd), m.Path(args[0]), args[1])
			if err != nil {
				return err
			}

			if !ok {
				cmd.Println("fail")

				return errCheckFailed
			}

			cmd.Println("pass")

			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
