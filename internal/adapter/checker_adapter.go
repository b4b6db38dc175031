package adapter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	m "cvariants.dev/pkg/cvariants/internal/model"
)

// ErrNoChecker is returned when no checker command is configured.
var ErrNoChecker = errors.New("no checker command configured")

// CheckerAdapter runs the external pass/fail checker on one program.
type CheckerAdapter interface {
	// Check runs the checker on file under label and reports its verdict.
	Check(ctx context.Context, file m.Path, label string) (bool, error)
}

// ExecChecker invokes an executable as `command <file> <label> <status>`.
// The verdict is read back from the status file the checker writes: a
// boolean ("1", "true") or the words "pass"/"fail".
type ExecChecker struct {
	command string
	timeout time.Duration
}

// NewExecChecker constructs an ExecChecker with a default 30s timeout.
func NewExecChecker(command string) *ExecChecker {
	return &ExecChecker{
		command: command,
		timeout: 30 * time.Second,
	}
}

// Check implements CheckerAdapter.
func (c *ExecChecker) Check(ctx context.Context, file m.Path, label string) (bool, error) {
	if strings.TrimSpace(c.command) == "" {
		return false, ErrNoChecker
	}

	status, err := os.CreateTemp("", "cvariants-check-*.status")
	if err != nil {
		return false, fmt.Errorf("create status file: %w", err)
	}

	statusPath := status.Name()
	_ = status.Close()

	defer func() { _ = os.Remove(statusPath) }()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.command, location(file), label, statusPath)

	var output bytes.Buffer

	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Run(); err != nil {
		return false, fmt.Errorf("run checker on %s: %w (output: %s)", file, err, strings.TrimSpace(output.String()))
	}

	raw, err := os.ReadFile(statusPath)
	if err != nil {
		return false, fmt.Errorf("read checker status: %w", err)
	}

	return parseVerdict(string(raw))
}

func parseVerdict(raw string) (bool, error) {
	verdict := strings.ToLower(strings.TrimSpace(raw))

	switch verdict {
	case "pass", "passed", "ok":
		return true, nil
	case "fail", "failed":
		return false, nil
	}

	ok, err := strconv.ParseBool(verdict)
	if err != nil {
		return false, fmt.Errorf("checker status %q: %w", verdict, err)
	}

	return ok, nil
}
