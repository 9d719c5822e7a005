package dedup

// Stage confidence and merge policy.
const (
	confidenceExact      = 1.0
	confidenceStructural = 0.8
	confidenceSemantic   = 0.85

	// Matches above this similarity are safe to merge automatically.
	mergeThreshold = 0.9
)

// Defaults for the zero-value Config.
const (
	DefaultThreshold     = 0.8
	DefaultMaxCandidates = 5
	DefaultPoolFactor    = 5
)

// Config controls cascade behavior. The zero value enables all stages and
// takes the defaults.
type Config struct {
	// Threshold is the minimum similarity for structural and semantic matches.
	Threshold float64
	// MaxCandidates caps the number of returned matches.
	MaxCandidates int
	// PoolFactor sizes the structural candidate pool: MaxCandidates * PoolFactor.
	PoolFactor int

	DisableExact      bool
	DisableStructural bool
	DisableSemantic   bool
}

func (c Config) withDefaults() Config {
	if c.Threshold <= 0 {
		c.Threshold = DefaultThreshold
	}
	if c.MaxCandidates <= 0 {
		c.MaxCandidates = DefaultMaxCandidates
	}
	if c.PoolFactor <= 0 {
		c.PoolFactor = DefaultPoolFactor
	}
	return c
}
