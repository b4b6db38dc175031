// Package controller renders progress and results of a generation run.
package controller

import (
	"context"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	m "cvariants.dev/pkg/cvariants/internal/model"
)

// StartMode defines the mode of operation for the UI.
type StartMode int

// Available StartMode values.
const (
	ModeGenerate StartMode = iota
	ModeInfo
)

// StartOption is a functional option for Start method.
type StartOption func(*StartConfig)

// StartConfig holds configuration for starting the UI.
type StartConfig struct {
	mode StartMode
}

// WithInfoMode sets the UI to info mode: nothing is emitted, only counts
// are shown.
func WithInfoMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeInfo
	}
}

// WithGenerateMode sets the UI to variant generation mode.
func WithGenerateMode() StartOption {
	return func(c *StartConfig) {
		c.mode = ModeGenerate
	}
}

func startConfig(options []StartOption) StartConfig {
	cfg := StartConfig{mode: ModeGenerate}
	for _, opt := range options {
		opt(&cfg)
	}

	return cfg
}

// UI defines the interface for reporting a run.
// Implementations can use different output methods (simple text, TUI, etc).
type UI interface {
	Start(ctx context.Context, options ...StartOption) error
	Close(ctx context.Context)
	Wait(ctx context.Context)
	DisplayConcurrencyInfo(ctx context.Context, tool string, seeds int, threads int)
	DisplaySeedResult(ctx context.Context, result m.SeedResult)
	DisplayVariant(ctx context.Context, record m.VariantRecord)
	DisplayInfo(ctx context.Context, results []m.SeedResult) error
	DisplaySummary(ctx context.Context, summary m.Summary) error
}

// IsTTY reports whether f is an interactive terminal.
func IsTTY(f *os.File) bool {
	if f == nil {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// NewUI picks the TUI for terminals and the SimpleUI otherwise.
func NewUI(cmd *cobra.Command, tty bool) UI {
	if tty {
		return NewTUI(cmd.OutOrStdout())
	}

	return NewSimpleUI(cmd)
}
