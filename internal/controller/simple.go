package controller

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	m "cvariants.dev/pkg/cvariants/internal/model"
)

// SimpleUI implements UI using cobra Command's output.
type SimpleUI struct {
	cmd *cobra.Command
}

// NewSimpleUI creates a new SimpleUI.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// Start initializes the UI.
func (s *SimpleUI) Start(ctx context.Context, _ ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return nil
}

// Close finalizes the UI.
func (s *SimpleUI) Close(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
}

// Wait blocks until the UI is closed (no-op for SimpleUI).
func (s *SimpleUI) Wait(ctx context.Context) {
	if err := ctx.Err(); err != nil {
		return
	}
}

// DisplayConcurrencyInfo shows what is about to run.
func (s *SimpleUI) DisplayConcurrencyInfo(ctx context.Context, tool string, seeds int, threads int) {
	if err := ctx.Err(); err != nil {
		return
	}

	s.printf("Running %s on %d seed program(s) with %d worker(s)\n", tool, seeds, threads)
}

// DisplaySeedResult shows the outcome of one seed.
func (s *SimpleUI) DisplaySeedResult(ctx context.Context, result m.SeedResult) {
	if err := ctx.Err(); err != nil {
		return
	}

	if result.Status != m.StatusOK {
		s.printf("%s: %s (%v)\n", result.Seed.Path, result.Status, result.Err)

		return
	}

	s.printf("%s: %d variant(s), reference %s\n", result.Seed.Path, result.Variants, result.Reference)
}

// DisplayVariant shows checker verdicts; unchecked variants are not listed.
func (s *SimpleUI) DisplayVariant(ctx context.Context, record m.VariantRecord) {
	if err := ctx.Err(); err != nil {
		return
	}

	if record.Check == m.CheckSkipped {
		return
	}

	s.printf("  %s/%s -> %s\n", record.Seed, record.Name, record.Check)
}

// DisplayInfo prints the discovery table.
func (s *SimpleUI) DisplayInfo(ctx context.Context, results []m.SeedResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("\n%s", renderInfoTable(results))

	return nil
}

// DisplaySummary prints the final table.
func (s *SimpleUI) DisplaySummary(ctx context.Context, summary m.Summary) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.printf("\n%s", renderSummaryTable(summary))

	return nil
}

func (s *SimpleUI) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.cmd.OutOrStdout(), format, args...)
}

// ruleCounts renders per-rule counts in the fixed rule order.
func ruleCounts(counts map[m.Rule]int) string {
	parts := make([]string, 0, len(counts))

	for _, r := range slices.Concat(m.MutatorRules, m.MutilatorRules) {
		if n, ok := counts[r]; ok {
			parts = append(parts, fmt.Sprintf("%s=%d", r, n))
		}
	}

	return strings.Join(parts, " ")
}

func renderInfoTable(results []m.SeedResult) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Seed", "Sites", "Blocks", "Space", "Variants"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoWrapText(false)
	table.SetColumnAlignment([]int{
		tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER,
		tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT,
	})

	var total uint64

	for _, r := range results {
		if r.Status != m.StatusOK {
			table.Append([]string{r.Seed.Name, r.Status.String(), "", "", ""})

			continue
		}

		d := r.Discovery
		total += d.SampledSpace
		table.Append([]string{
			r.Seed.Name,
			ruleCounts(d.Counts),
			fmt.Sprintf("%d", d.Blocks),
			fmt.Sprintf("%d", d.TotalSpace),
			fmt.Sprintf("%d", d.SampledSpace),
		})
	}

	table.SetFooter([]string{fmt.Sprintf("Total Seeds %d", len(results)), "", "", "", fmt.Sprintf("%d", total)})
	table.Render()

	return tableBuffer.String()
}

func renderSummaryTable(summary m.Summary) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Seed", "Status", "Reference", "Variants"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_CENTER, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})

	for _, r := range summary.Seeds {
		table.Append([]string{r.Seed.Name, r.Status.String(), r.Reference, fmt.Sprintf("%d", r.Variants)})
	}

	table.SetFooter([]string{
		fmt.Sprintf("Total Seeds %d", len(summary.Seeds)),
		fmt.Sprintf("Failed %d", summary.Failed()),
		fmt.Sprintf("Changed %d", summary.Changed),
		fmt.Sprintf("%d", summary.Variants),
	})
	table.Render()

	out := tableBuffer.String()

	if summary.Bugs > 0 {
		out += fmt.Sprintf("Injected bugs: %d\n", summary.Bugs)
	}

	if checked := summary.Checks[m.CheckPassed] + summary.Checks[m.CheckFailed] + summary.Checks[m.CheckError]; checked > 0 {
		out += fmt.Sprintf("Checker: %d pass, %d fail, %d error\n",
			summary.Checks[m.CheckPassed], summary.Checks[m.CheckFailed], summary.Checks[m.CheckError])
	}

	return out
}
