package model

// Path represents a file system path or afs URL.
type Path string

// Seed is one input C program.
type Seed struct {
	Path        Path
	Name        string // stem used for the output directory
	Fingerprint uint64
}

// PreparedSource is a seed rearranged for the parser: system includes, then
// local includes, then the boundary marker, then the rest of the program.
type PreparedSource struct {
	SystemIncludes []string
	LocalIncludes  []string
	Text           []byte
	// LineOffset is the number of lines placed in Text ahead of the seed's
	// first line. Parsed coordinates subtract it.
	LineOffset int
}

// Includes returns the include lines in emission order.
func (p PreparedSource) Includes() []string {
	out := make([]string, 0, len(p.SystemIncludes)+len(p.LocalIncludes))
	out = append(out, p.SystemIncludes...)

	return append(out, p.LocalIncludes...)
}
