package embed

import (
	crand "crypto/rand"
	"encoding/binary"
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/aidanproy/minorminer/pkg/errors"
)

// =============================================================================
// Default Values - Single Source of Truth for Library, CLI, and API
// =============================================================================

const (
	// DefaultMaxNoImprovement is the bound on consecutive stalled passes per
	// phase of the embedding search.
	DefaultMaxNoImprovement = 10

	// DefaultTimeout is the wall-clock budget before early exit.
	DefaultTimeout = 1000 * time.Second

	// DefaultTries is the maximum number of full restarts.
	DefaultTries = 10

	// DefaultChainlengthPatience is the stall bound during chain-length
	// reduction.
	DefaultChainlengthPatience = 10

	// DefaultThreads is the worker pool size.
	DefaultThreads = 1

	// MaxFillLimit is the hard cap on MaxFill. Overlap counts are kept small
	// enough that beta^u stays representable.
	MaxFillLimit = 63
)

// Options configures a call to [FindEmbedding]. The zero value selects every
// default; construct, set fields, and pass a pointer. L is the label type of
// the input graphs.
//
// Chain-valued fields (InitialChains, FixedChains, RestrictChains,
// SuspendChains) reference nodes by label; every referenced label must occur
// in an edge of the corresponding graph or FindEmbedding fails with
// UNKNOWN_NODE before any heuristic work.
type Options[L comparable] struct {
	// MaxNoImprovement bounds consecutive stalled passes per phase.
	MaxNoImprovement int `json:"max_no_improvement,omitempty" toml:"max_no_improvement"`

	// RandomSeed seeds the engine RNG. Zero means fresh OS entropy; runs
	// with Threads == 1 and a nonzero seed are fully deterministic.
	RandomSeed uint64 `json:"random_seed,omitempty" toml:"random_seed"`

	// Timeout is the wall-clock budget. Zero means DefaultTimeout.
	Timeout time.Duration `json:"timeout,omitempty" toml:"timeout"`

	// MaxBeta caps the overlap penalty base. Zero means unbounded; any
	// explicit value must be > 1.
	MaxBeta float64 `json:"max_beta,omitempty" toml:"max_beta"`

	// Tries is the maximum number of full restarts. Zero means DefaultTries.
	Tries int `json:"tries,omitempty" toml:"tries"`

	// InnerRounds caps passes per try. Zero means unbounded.
	InnerRounds int `json:"inner_rounds,omitempty" toml:"inner_rounds"`

	// ChainlengthPatience is the stall bound during chain-length reduction.
	ChainlengthPatience int `json:"chainlength_patience,omitempty" toml:"chainlength_patience"`

	// MaxFill caps how many chains may share one target node during search.
	// Zero means unbounded; values above MaxFillLimit are clamped.
	MaxFill int `json:"max_fill,omitempty" toml:"max_fill"`

	// Threads is the worker pool size for the neighbor-distance phase.
	Threads int `json:"threads,omitempty" toml:"threads"`

	// SkipInitialization starts from InitialChains as a semi-valid embedding
	// instead of running the initialization pass.
	SkipInitialization bool `json:"skip_initialization,omitempty" toml:"skip_initialization"`

	// Verbose selects the diagnostics level, 0-4.
	Verbose int `json:"verbose,omitempty" toml:"verbose"`

	// InitialChains seeds chains before the search. They may overlap.
	InitialChains map[L][]L `json:"initial_chains,omitempty" toml:"initial_chains"`

	// FixedChains are immutable chains. They occupy their target nodes for
	// the whole run and appear verbatim in the output.
	FixedChains map[L][]L `json:"fixed_chains,omitempty" toml:"fixed_chains"`

	// RestrictChains softly confines each source's chain to a set of target
	// nodes. The engine may violate the set to make progress, at a penalty.
	RestrictChains map[L][]L `json:"restrict_chains,omitempty" toml:"restrict_chains"`

	// SuspendChains forces, for each blob in the list, at least one of the
	// blob's target nodes into that source's chain.
	SuspendChains map[L][][]L `json:"suspend_chains,omitempty" toml:"suspend_chains"`

	// Logger receives engine diagnostics. Defaults to a discard logger.
	Logger *log.Logger `json:"-" toml:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// ValidateAndSetDefaults checks option ranges and applies defaults.
// This method is idempotent - calling it multiple times has the same effect
// as calling it once. It is called by FindEmbedding; callers only need it to
// surface usage errors early.
func (o *Options[L]) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.MaxNoImprovement < 0 {
		return errors.New(errors.ErrCodeInvalidOption, "max_no_improvement must be non-negative, got %d", o.MaxNoImprovement)
	}
	if o.MaxNoImprovement == 0 {
		o.MaxNoImprovement = DefaultMaxNoImprovement
	}
	if o.Timeout < 0 {
		return errors.New(errors.ErrCodeInvalidOption, "timeout must be non-negative, got %s", o.Timeout)
	}
	if o.Timeout == 0 {
		o.Timeout = DefaultTimeout
	}
	if o.MaxBeta != 0 && (o.MaxBeta <= 1 || math.IsNaN(o.MaxBeta)) {
		return errors.New(errors.ErrCodeInvalidOption, "max_beta must be > 1, got %v", o.MaxBeta)
	}
	if o.MaxBeta == 0 {
		o.MaxBeta = math.Inf(1)
	}
	if o.Tries < 0 {
		return errors.New(errors.ErrCodeInvalidOption, "tries must be non-negative, got %d", o.Tries)
	}
	if o.Tries == 0 {
		o.Tries = DefaultTries
	}
	if o.InnerRounds < 0 {
		return errors.New(errors.ErrCodeInvalidOption, "inner_rounds must be non-negative, got %d", o.InnerRounds)
	}
	if o.InnerRounds == 0 {
		o.InnerRounds = math.MaxInt
	}
	if o.ChainlengthPatience < 0 {
		return errors.New(errors.ErrCodeInvalidOption, "chainlength_patience must be non-negative, got %d", o.ChainlengthPatience)
	}
	if o.ChainlengthPatience == 0 && !o.SkipInitialization {
		o.ChainlengthPatience = DefaultChainlengthPatience
	}
	if o.MaxFill < 0 {
		return errors.New(errors.ErrCodeInvalidOption, "max_fill must be non-negative, got %d", o.MaxFill)
	}
	if o.MaxFill == 0 || o.MaxFill > MaxFillLimit {
		o.MaxFill = MaxFillLimit
	}
	if o.Threads < 0 {
		return errors.New(errors.ErrCodeInvalidOption, "threads must be >= 1, got %d", o.Threads)
	}
	if o.Threads == 0 {
		o.Threads = DefaultThreads
	}
	if o.Verbose < 0 || o.Verbose > 4 {
		return errors.New(errors.ErrCodeInvalidOption, "verbose must be in 0..4, got %d", o.Verbose)
	}
	if o.RandomSeed == 0 {
		o.RandomSeed = entropySeed()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.Verbose > 0 {
		o.Logger.SetLevel(verboseLevel(o.Verbose))
	}
	o.validated = true
	return nil
}

// verboseLevel maps the 1-4 diagnostics levels onto logger levels. Level 0
// leaves the supplied logger's own level in place.
func verboseLevel(v int) log.Level {
	if v == 1 {
		return log.InfoLevel
	}
	return log.DebugLevel
}

// entropySeed draws a nonzero seed from the OS entropy pool.
func entropySeed() uint64 {
	var b [8]byte
	if _, err := io.ReadFull(crand.Reader, b[:]); err != nil {
		// Entropy exhaustion is effectively unreachable; fall back to the
		// clock rather than failing the call.
		return uint64(time.Now().UnixNano()) | 1
	}
	s := binary.LittleEndian.Uint64(b[:])
	if s == 0 {
		s = 1
	}
	return s
}
