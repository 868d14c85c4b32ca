package embed

import (
	"math"
	"testing"
	"time"

	"github.com/aidanproy/minorminer/pkg/errors"
)

func TestOptionsDefaults(t *testing.T) {
	o := &Options[string]{}
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("zero options must validate: %v", err)
	}
	if o.MaxNoImprovement != DefaultMaxNoImprovement {
		t.Errorf("MaxNoImprovement = %d, want %d", o.MaxNoImprovement, DefaultMaxNoImprovement)
	}
	if o.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", o.Timeout, DefaultTimeout)
	}
	if !math.IsInf(o.MaxBeta, 1) {
		t.Errorf("MaxBeta = %v, want +Inf", o.MaxBeta)
	}
	if o.Tries != DefaultTries {
		t.Errorf("Tries = %d, want %d", o.Tries, DefaultTries)
	}
	if o.InnerRounds != math.MaxInt {
		t.Errorf("InnerRounds = %d, want unbounded", o.InnerRounds)
	}
	if o.ChainlengthPatience != DefaultChainlengthPatience {
		t.Errorf("ChainlengthPatience = %d, want %d", o.ChainlengthPatience, DefaultChainlengthPatience)
	}
	if o.MaxFill != MaxFillLimit {
		t.Errorf("MaxFill = %d, want %d", o.MaxFill, MaxFillLimit)
	}
	if o.Threads != DefaultThreads {
		t.Errorf("Threads = %d, want %d", o.Threads, DefaultThreads)
	}
	if o.RandomSeed == 0 {
		t.Error("RandomSeed must be drawn from entropy when unset")
	}
	if o.Logger == nil {
		t.Error("Logger must default to a discard logger")
	}
}

func TestOptionsValidation(t *testing.T) {
	tests := []struct {
		name string
		opts Options[string]
	}{
		{"negative max_no_improvement", Options[string]{MaxNoImprovement: -1}},
		{"negative timeout", Options[string]{Timeout: -time.Second}},
		{"max_beta at one", Options[string]{MaxBeta: 1}},
		{"max_beta below one", Options[string]{MaxBeta: 0.5}},
		{"max_beta NaN", Options[string]{MaxBeta: math.NaN()}},
		{"negative tries", Options[string]{Tries: -2}},
		{"negative inner_rounds", Options[string]{InnerRounds: -1}},
		{"negative patience", Options[string]{ChainlengthPatience: -1}},
		{"negative max_fill", Options[string]{MaxFill: -1}},
		{"negative threads", Options[string]{Threads: -1}},
		{"verbose out of range", Options[string]{Verbose: 5}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.opts.ValidateAndSetDefaults()
			if err == nil {
				t.Fatal("expected a usage error")
			}
			if !errors.Is(err, errors.ErrCodeInvalidOption) {
				t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidOption)
			}
		})
	}
}

func TestOptionsMaxFillClamp(t *testing.T) {
	o := &Options[string]{MaxFill: 1000}
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if o.MaxFill != MaxFillLimit {
		t.Errorf("MaxFill = %d, want clamp to %d", o.MaxFill, MaxFillLimit)
	}
}

func TestOptionsIdempotent(t *testing.T) {
	o := &Options[string]{RandomSeed: 99, Threads: 3}
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	seed, timeout := o.RandomSeed, o.Timeout
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if o.RandomSeed != seed || o.Timeout != timeout || o.Threads != 3 {
		t.Error("second validation must not change anything")
	}
}

func TestOptionsPatienceZeroWithSkip(t *testing.T) {
	// skip_initialization leaves chainlength patience at zero, so the
	// reduction phase runs no tear-and-rebuild passes (only its prune sweep),
	// which is what makes re-embedding idempotent.
	o := &Options[string]{SkipInitialization: true}
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if o.ChainlengthPatience != 0 {
		t.Errorf("ChainlengthPatience = %d, want 0 with skip_initialization", o.ChainlengthPatience)
	}
}
