package cli

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/aidanproy/minorminer/pkg/embed"
)

// embedFlags holds the command-line flags for the embed command. Flags
// override values from --options files.
type embedFlags struct {
	optionsFile string
	seed        uint64
	timeoutSecs float64
	tries       int
	threads     int
	maxFill     int
	innerRounds int
	patience    int
	skipInit    bool
	output      string
	check       bool
	noCache     bool
}

// optionsFile mirrors embed.Options for TOML decoding, with the timeout
// given in seconds. Chain-valued options are only practical from a file.
type optionsFile struct {
	MaxNoImprovement    int                   `toml:"max_no_improvement"`
	RandomSeed          uint64                `toml:"random_seed"`
	TimeoutSeconds      float64               `toml:"timeout"`
	MaxBeta             float64               `toml:"max_beta"`
	Tries               int                   `toml:"tries"`
	InnerRounds         int                   `toml:"inner_rounds"`
	ChainlengthPatience int                   `toml:"chainlength_patience"`
	MaxFill             int                   `toml:"max_fill"`
	Threads             int                   `toml:"threads"`
	SkipInitialization  bool                  `toml:"skip_initialization"`
	InitialChains       map[string][]string   `toml:"initial_chains"`
	FixedChains         map[string][]string   `toml:"fixed_chains"`
	RestrictChains      map[string][]string   `toml:"restrict_chains"`
	SuspendChains       map[string][][]string `toml:"suspend_chains"`
}

// toOptions converts the file form into engine options.
func (f *optionsFile) toOptions() *embed.Options[string] {
	return &embed.Options[string]{
		MaxNoImprovement:    f.MaxNoImprovement,
		RandomSeed:          f.RandomSeed,
		Timeout:             time.Duration(f.TimeoutSeconds * float64(time.Second)),
		MaxBeta:             f.MaxBeta,
		Tries:               f.Tries,
		InnerRounds:         f.InnerRounds,
		ChainlengthPatience: f.ChainlengthPatience,
		MaxFill:             f.MaxFill,
		Threads:             f.Threads,
		SkipInitialization:  f.SkipInitialization,
		InitialChains:       f.InitialChains,
		FixedChains:         f.FixedChains,
		RestrictChains:      f.RestrictChains,
		SuspendChains:       f.SuspendChains,
	}
}

// buildOptions merges the options file (if any) with explicitly set flags.
func (fl *embedFlags) buildOptions(cmd *cobra.Command) (*embed.Options[string], error) {
	var file optionsFile
	if fl.optionsFile != "" {
		if _, err := toml.DecodeFile(fl.optionsFile, &file); err != nil {
			return nil, fmt.Errorf("decode options file %s: %w", fl.optionsFile, err)
		}
	}
	opts := file.toOptions()

	set := cmd.Flags().Changed
	if set("seed") {
		opts.RandomSeed = fl.seed
	}
	if set("timeout") {
		opts.Timeout = time.Duration(fl.timeoutSecs * float64(time.Second))
	}
	if set("tries") {
		opts.Tries = fl.tries
	}
	if set("threads") {
		opts.Threads = fl.threads
	}
	if set("max-fill") {
		opts.MaxFill = fl.maxFill
	}
	if set("inner-rounds") {
		opts.InnerRounds = fl.innerRounds
	}
	if set("patience") {
		opts.ChainlengthPatience = fl.patience
	}
	if set("skip-initialization") {
		opts.SkipInitialization = fl.skipInit
	}
	return opts, nil
}

// embedCommand creates the embed command.
func (c *CLI) embedCommand() *cobra.Command {
	fl := embedFlags{}

	cmd := &cobra.Command{
		Use:   "embed <source-graph> <target-graph>",
		Short: "Compute a minor embedding of a source graph into a target graph",
		Long: `Compute a minor embedding of a source graph into a target graph.

Graphs are edge-list files: one "u v" pair per line ('#' comments), or JSON
{"edges": [["u","v"], ...]} when the file ends in .json. Chain constraints
(initial, fixed, restrict, suspend) are given via a TOML options file.

Examples:
  minorminer embed problem.txt chimera.txt
  minorminer embed problem.txt chimera.txt --seed 42 --threads 4 -o out.json
  minorminer embed problem.json target.json --options run.toml --check`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readGraphFile(args[0])
			if err != nil {
				return err
			}
			tgt, err := readGraphFile(args[1])
			if err != nil {
				return err
			}
			opts, err := fl.buildOptions(cmd)
			if err != nil {
				return err
			}

			runner, err := c.newRunner(fl.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			p := newProgress(c.Logger)
			res, err := runner.Execute(cmd.Context(), src, tgt, opts)
			if err != nil {
				return err
			}
			p.done(fmt.Sprintf("Embedded %d chains", res.Quality.Chains))

			printResult(res)

			if fl.check {
				if err := embed.Verify(src, tgt, res.Mapping); err != nil {
					printError("Verification failed: %v", err)
				} else {
					printSuccess("Verification passed")
				}
			}

			if fl.output != "" {
				if err := writeMappingFile(fl.output, res); err != nil {
					return fmt.Errorf("write output: %w", err)
				}
				printFile(fl.output)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&fl.optionsFile, "options", "", "TOML options file")
	cmd.Flags().Uint64Var(&fl.seed, "seed", 0, "random seed (0 draws fresh entropy)")
	cmd.Flags().Float64Var(&fl.timeoutSecs, "timeout", 1000, "wall-clock budget in seconds")
	cmd.Flags().IntVar(&fl.tries, "tries", 0, "maximum full restarts")
	cmd.Flags().IntVar(&fl.threads, "threads", 0, "worker pool size")
	cmd.Flags().IntVar(&fl.maxFill, "max-fill", 0, "cap on chains per target node during search")
	cmd.Flags().IntVar(&fl.innerRounds, "inner-rounds", 0, "maximum passes per try")
	cmd.Flags().IntVar(&fl.patience, "patience", 0, "stall bound during chainlength reduction")
	cmd.Flags().BoolVar(&fl.skipInit, "skip-initialization", false, "start from the initial chains as a semi-valid embedding")
	cmd.Flags().StringVarP(&fl.output, "output", "o", "", "write the embedding as JSON")
	cmd.Flags().BoolVar(&fl.check, "check", false, "verify the returned embedding")
	cmd.Flags().BoolVar(&fl.noCache, "no-cache", false, "bypass the result cache")

	return cmd
}
