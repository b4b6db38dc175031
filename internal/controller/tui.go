package controller

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	m "cvariants.dev/pkg/cvariants/internal/model"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	faintStyle = lipgloss.NewStyle().Faint(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

const maxBarWidth = 60

// TUI implements UI using Bubble Tea: a progress bar over seed programs
// while generating, styled tables afterwards.
type TUI struct {
	output  io.Writer
	program *tea.Program
	done    chan struct{}
	mu      sync.Mutex
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output}
}

// Start launches the progress program in generate mode.
func (t *TUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if startConfig(options).mode == ModeInfo {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.program = tea.NewProgram(newProgressModel(), tea.WithOutput(t.output), tea.WithInput(nil), tea.WithContext(ctx))
	t.done = make(chan struct{})

	go func(program *tea.Program, done chan struct{}) {
		defer close(done)

		if _, err := program.Run(); err != nil {
			slog.Warn("progress display stopped", "error", err)
		}
	}(t.program, t.done)

	return nil
}

func (t *TUI) send(msg tea.Msg) {
	t.mu.Lock()
	program := t.program
	t.mu.Unlock()

	if program != nil {
		program.Send(msg)
	}
}

// Close stops the progress program and waits for it to restore the terminal.
func (t *TUI) Close(_ context.Context) {
	t.mu.Lock()
	program, done := t.program, t.done
	t.program = nil
	t.mu.Unlock()

	if program == nil {
		return
	}

	program.Send(finishedMsg{})
	<-done
}

// Wait blocks until the progress program exits.
func (t *TUI) Wait(ctx context.Context) {
	t.mu.Lock()
	done := t.done
	t.mu.Unlock()

	if done == nil {
		return
	}

	select {
	case <-done:
	case <-ctx.Done():
	}
}

// DisplayConcurrencyInfo sets the progress total.
func (t *TUI) DisplayConcurrencyInfo(_ context.Context, tool string, seeds int, threads int) {
	t.send(planMsg{tool: tool, seeds: seeds, threads: threads})
}

// DisplaySeedResult advances the progress bar.
func (t *TUI) DisplaySeedResult(_ context.Context, result m.SeedResult) {
	t.send(seedDoneMsg{result: result})
}

// DisplayVariant counts emitted variants.
func (t *TUI) DisplayVariant(_ context.Context, record m.VariantRecord) {
	t.send(variantMsg{record: record})
}

// DisplayInfo prints the discovery table.
func (t *TUI) DisplayInfo(ctx context.Context, results []m.SeedResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(t.output, "%s\n\n%s", titleStyle.Render("cvariants - variant space"), renderInfoTable(results))

	return err
}

// DisplaySummary prints the final table.
func (t *TUI) DisplaySummary(ctx context.Context, summary m.Summary) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	title := titleStyle.Render("cvariants " + summary.Tool + " - summary")

	_, err := fmt.Fprintf(t.output, "%s\n\n%s", title, renderSummaryTable(summary))

	return err
}

type planMsg struct {
	tool    string
	seeds   int
	threads int
}

type seedDoneMsg struct {
	result m.SeedResult
}

type variantMsg struct {
	record m.VariantRecord
}

type finishedMsg struct{}

// progressModel is the Bubble Tea model of a running batch.
type progressModel struct {
	bar      progress.Model
	tool     string
	threads  int
	total    int
	done     int
	failed   int
	variants int
	last     string
	quitting bool
}

func newProgressModel() progressModel {
	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = maxBarWidth

	return progressModel{bar: bar}
}

func (pm progressModel) Init() tea.Cmd {
	return nil
}

func (pm progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		pm.bar.Width = min(max(msg.Width-4, 10), maxBarWidth)
	case planMsg:
		pm.tool, pm.total, pm.threads = msg.tool, msg.seeds, msg.threads
	case seedDoneMsg:
		pm.done++
		pm.last = msg.result.Seed.Name

		if msg.result.Status != m.StatusOK {
			pm.failed++
		}
	case variantMsg:
		pm.variants++
	case finishedMsg:
		pm.quitting = true

		return pm, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			pm.quitting = true

			return pm, tea.Quit
		}
	}

	return pm, nil
}

func (pm progressModel) percent() float64 {
	if pm.total == 0 {
		return 0
	}

	return float64(pm.done) / float64(pm.total)
}

func (pm progressModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("cvariants " + pm.tool))
	fmt.Fprintf(&b, " %s\n\n", faintStyle.Render(fmt.Sprintf("(%d worker(s))", pm.threads)))
	b.WriteString("  " + pm.bar.ViewAs(pm.percent()) + "\n\n")
	fmt.Fprintf(&b, "  seeds %d/%d | variants %d", pm.done, pm.total, pm.variants)

	if pm.failed > 0 {
		b.WriteString(" | " + errorStyle.Render(fmt.Sprintf("failed %d", pm.failed)))
	}

	b.WriteString("\n")

	if pm.last != "" && !pm.quitting {
		b.WriteString(faintStyle.Render("  last: "+pm.last) + "\n")
	}

	return b.String()
}
