package adapter

import (
	"bufio"
	"bytes"
	"strings"

	m "cvariants.dev/pkg/cvariants/internal/model"
)

// MarkerFunction is the boundary inserted between the include block and the
// program body. Everything up to and including it is dropped after parsing.
const (
	MarkerName     = "fakestart"
	MarkerFunction = "void fakestart() {;}"
)

// PrepareSource splits the include lines of a seed program into system
// (<...>) and local groups and places the boundary marker right after them.
// The parser never sees the include lines themselves; the printer re-emits
// them on top of every variant.
func PrepareSource(text []byte) m.PreparedSource {
	var (
		prepared m.PreparedSource
		body     bytes.Buffer
	)

	scanner := bufio.NewScanner(bytes.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		if isInclude(trimmed) {
			if strings.Contains(trimmed, "<") {
				prepared.SystemIncludes = append(prepared.SystemIncludes, trimmed)
			} else {
				prepared.LocalIncludes = append(prepared.LocalIncludes, trimmed)
			}

			// keep line numbers of the body stable
			body.WriteString("\n")

			continue
		}

		body.WriteString(line)
		body.WriteString("\n")
	}

	var out bytes.Buffer

	out.WriteString(MarkerFunction)
	out.WriteString("\n")
	out.Write(body.Bytes())
	prepared.Text = out.Bytes()
	prepared.LineOffset = 1

	return prepared
}

func isInclude(line string) bool {
	if !strings.HasPrefix(line, "#") {
		return false
	}

	return strings.HasPrefix(strings.TrimSpace(strings.TrimPrefix(line, "#")), "include")
}
