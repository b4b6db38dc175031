package model

// SeedStatus is the outcome of processing one seed program.
type SeedStatus int

const (
	// StatusOK indicates every requested variant was emitted.
	StatusOK SeedStatus = iota
	// StatusParseFailure indicates the canonical form could not be parsed.
	StatusParseFailure
	// StatusRewriteFailure indicates a variant could not be produced.
	StatusRewriteFailure
	// StatusEmitFailure indicates a variant could not be written.
	StatusEmitFailure
)

func (s SeedStatus) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusParseFailure:
		return "parse-failure"
	case StatusRewriteFailure:
		return "rewrite-failure"
	case StatusEmitFailure:
		return "emit-failure"
	default:
		return "unknown"
	}
}

// CheckStatus is the verdict of the external checker for one variant.
type CheckStatus int

const (
	// CheckSkipped indicates no checker ran.
	CheckSkipped CheckStatus = iota
	// CheckPassed indicates the checker accepted the variant.
	CheckPassed
	// CheckFailed indicates the checker rejected the variant.
	CheckFailed
	// CheckError indicates the checker could not be run.
	CheckError
)

func (c CheckStatus) String() string {
	switch c {
	case CheckPassed:
		return "pass"
	case CheckFailed:
		return "fail"
	case CheckError:
		return "error"
	default:
		return "skipped"
	}
}

// DiscoveryReport summarizes what one discovery pass found.
type DiscoveryReport struct {
	Counts       map[Rule]int
	Blocks       int
	Reorderings  uint64
	Variables    int
	TotalSpace   uint64
	SampledSpace uint64
}

// VariantRecord is written for every emitted variant.
type VariantRecord struct {
	Seed    string
	Name    string
	File    Path
	Check   CheckStatus
	Bugs    int
	Changed bool
}

// SeedResult is returned by the per-seed pipeline stage.
type SeedResult struct {
	Seed      Seed
	Status    SeedStatus
	Err       error
	Reference string
	Variants  int
	Discovery DiscoveryReport
}

// Manifest is persisted next to the variants of one seed.
type Manifest struct {
	Seed        string            `yaml:"seed"`
	Fingerprint string            `yaml:"fingerprint"`
	Reference   string            `yaml:"reference"`
	Rules       []Rule            `yaml:"rules"`
	Dimensions  []ManifestDim     `yaml:"dimensions"`
	Variants    []ManifestVariant `yaml:"variants"`
}

// ManifestDim describes one dimension in a manifest.
type ManifestDim struct {
	Rule    Rule   `yaml:"rule"`
	Size    uint64 `yaml:"size"`
	Sampled int    `yaml:"sampled"`
}

// ManifestVariant describes one emitted variant in a manifest.
type ManifestVariant struct {
	Name  string `yaml:"name"`
	Check string `yaml:"check,omitempty"`
}

// Summary aggregates one batch run.
type Summary struct {
	Tool     string
	Seeds    []SeedResult
	Variants int
	Changed  int
	Bugs     int
	Checks   map[CheckStatus]int
}

// Failed returns the number of seeds that did not finish.
func (s Summary) Failed() int {
	n := 0

	for _, r := range s.Seeds {
		if r.Status != StatusOK {
			n++
		}
	}

	return n
}
