package common

import (
	"path"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/zeu5/tabular-rl/core"
	"github.com/zeu5/tabular-rl/policies"
	"github.com/zeu5/tabular-rl/util"
)

// Algorithm names accepted on the command line.
const (
	MonteCarlo = "mc"
	Sarsa      = "sarsa"
	QLearning  = "qlearning"
)

// Random is the non-learning baseline, only available to comparisons.
const Random = "random"

var Algorithms = []string{MonteCarlo, Sarsa, QLearning}

var Comparable = []string{MonteCarlo, Sarsa, QLearning, Random}

type Flags struct {
	RunFlags   `mapstructure:",squash"`
	AgentFlags `mapstructure:",squash"`

	SavePath    string `mapstructure:"save-path"`
	RunID       string `mapstructure:"run-id"`
	TrackFile   string `mapstructure:"track"`
	Colors      bool   `mapstructure:"colors"`
	Debug       bool   `mapstructure:"debug"`
	LogLevel    string `mapstructure:"log-level"`
	ReportEvery int    `mapstructure:"report-every"`
	ChartWindow int    `mapstructure:"chart-window"`

	// keys given explicitly on the command line or in the environment
	overrides map[string]bool
}

type RunFlags struct {
	NumRuns  int `mapstructure:"num-runs"`
	Episodes int `mapstructure:"episodes"`
	MaxSteps int `mapstructure:"max-steps"`
}

// AgentFlags are the learning parameters. A negative Alpha selects the
// historical average update for Monte Carlo control.
type AgentFlags struct {
	Gamma   float64 `mapstructure:"gamma"`
	Epsilon float64 `mapstructure:"epsilon"`
	Alpha   float64 `mapstructure:"alpha"`
	Seed    uint64  `mapstructure:"seed"`

	EpsilonDecay      float64 `mapstructure:"epsilon-decay"`
	EpsilonDecayFrom  int     `mapstructure:"epsilon-decay-from"`
	EpsilonDecayEvery int     `mapstructure:"epsilon-decay-every"`
	AlphaDecay        float64 `mapstructure:"alpha-decay"`
}

func DefaultFlags() *Flags {
	agent := policies.DefaultAgentConfig()
	return &Flags{
		SavePath: "results",
		RunFlags: RunFlags{
			NumRuns:  1,
			Episodes: 10000,
			MaxSteps: core.DefaultMaxSteps,
		},
		AgentFlags: AgentFlags{
			Gamma:             agent.Gamma,
			Epsilon:           agent.Epsilon,
			Alpha:             agent.Alpha,
			Seed:              agent.Seed,
			EpsilonDecay:      0.9,
			EpsilonDecayFrom:  6400,
			EpsilonDecayEvery: 50,
			AlphaDecay:        0.9995,
		},
		Colors:      true,
		Debug:       false,
		LogLevel:    "info",
		ReportEvery: 1000,
		ChartWindow: 100,
	}
}

var ErrInvalidFlags = errors.Wrap(core.ErrInvalidConfiguration, "flags")

func (f *Flags) Validate() error {
	switch {
	case f.Gamma < 0 || f.Gamma > 1:
		return errors.Wrapf(ErrInvalidFlags, "gamma %g not in [0, 1]", f.Gamma)
	case f.Epsilon < 0 || f.Epsilon > 1:
		return errors.Wrapf(ErrInvalidFlags, "epsilon %g not in [0, 1]", f.Epsilon)
	case f.Alpha > 1:
		return errors.Wrapf(ErrInvalidFlags, "alpha %g greater than 1", f.Alpha)
	case f.Episodes <= 0:
		return errors.Wrapf(ErrInvalidFlags, "episodes must be positive, got %d", f.Episodes)
	case f.MaxSteps <= 0:
		return errors.Wrapf(ErrInvalidFlags, "max steps must be positive, got %d", f.MaxSteps)
	case f.NumRuns <= 0:
		return errors.Wrapf(ErrInvalidFlags, "runs must be positive, got %d", f.NumRuns)
	case f.EpsilonDecay < 0 || f.AlphaDecay < 0:
		return errors.Wrap(ErrInvalidFlags, "decay factors must not be negative")
	case f.ReportEvery < 0:
		return errors.Wrapf(ErrInvalidFlags, "report interval must not be negative, got %d", f.ReportEvery)
	}
	return nil
}

// ValidateFor rejects the negative alpha convention for the TD algorithms,
// which always use a step size.
func (f *Flags) ValidateFor(algorithm string) error {
	preset := f.Preset(algorithm)
	if preset.Alpha < 0 && (algorithm == Sarsa || algorithm == QLearning) {
		return errors.Wrapf(ErrInvalidFlags, "alpha %g must not be negative for %s", preset.Alpha, algorithm)
	}
	if preset.Episodes <= 0 {
		return errors.Wrapf(ErrInvalidFlags, "episodes must be positive, got %d", preset.Episodes)
	}
	return nil
}

// Record assigns a run id if none is set and saves the flags to
// <SavePath>/config.json.
func (f *Flags) Record() error {
	if f.RunID == "" {
		f.RunID = uuid.NewString()
	}
	return util.SaveJson(path.Join(f.SavePath, "config.json"), f)
}

// Override marks keys as explicitly set so they take precedence over the
// algorithm presets.
func (f *Flags) Override(keys ...string) {
	if f.overrides == nil {
		f.overrides = make(map[string]bool)
	}
	for _, key := range keys {
		f.overrides[key] = true
	}
}

func (f *Flags) overridden(key string) bool {
	return f.overrides[key]
}

// Preset is the tuned training schedule of one algorithm.
type Preset struct {
	Episodes     int
	Epsilon      float64
	Alpha        float64
	EpsilonDecay policies.Decay
	AlphaDecay   policies.Decay
}

// Presets holds the race track schedules of the learning algorithms.
// Monte Carlo averages all returns.
var Presets = map[string]Preset{
	MonteCarlo: {
		Episodes:     8000,
		Epsilon:      0.6,
		Alpha:        -1,
		EpsilonDecay: policies.Decay{From: 6400, Every: 50, Factor: 0.9},
	},
	Sarsa: {
		Episodes:     8000,
		Epsilon:      0.5,
		Alpha:        0.1,
		EpsilonDecay: policies.Decay{From: 6400, Every: 50, Factor: 0.9},
	},
	QLearning: {
		Episodes:     6400,
		Epsilon:      0.3,
		Alpha:        0.5,
		EpsilonDecay: policies.Decay{From: 4800, Every: 50, Factor: 0.98},
		AlphaDecay:   policies.Decay{Every: 1, Factor: 0.9995},
	},
}

// PresetKeys are the flags that replace a preset value when overridden.
var PresetKeys = []string{
	"episodes", "epsilon", "alpha",
	"epsilon-decay", "epsilon-decay-from", "epsilon-decay-every", "alpha-decay",
}

// Preset returns the schedule of algorithm with every overridden flag
// applied. Algorithms without a preset use the flag values as they are, with
// no alpha decay.
func (f *Flags) Preset(algorithm string) Preset {
	preset, ok := Presets[algorithm]
	if !ok {
		return Preset{
			Episodes:     f.Episodes,
			Epsilon:      f.Epsilon,
			Alpha:        f.Alpha,
			EpsilonDecay: policies.Decay{From: f.EpsilonDecayFrom, Every: f.EpsilonDecayEvery, Factor: f.EpsilonDecay},
		}
	}
	if f.overridden("episodes") {
		preset.Episodes = f.Episodes
	}
	if f.overridden("epsilon") {
		preset.Epsilon = f.Epsilon
	}
	if f.overridden("alpha") {
		preset.Alpha = f.Alpha
	}
	if f.overridden("epsilon-decay") {
		preset.EpsilonDecay.Factor = f.EpsilonDecay
	}
	if f.overridden("epsilon-decay-from") {
		preset.EpsilonDecay.From = f.EpsilonDecayFrom
	}
	if f.overridden("epsilon-decay-every") {
		preset.EpsilonDecay.Every = f.EpsilonDecayEvery
	}
	// alpha decay only drives Q-learning
	if algorithm == QLearning && f.overridden("alpha-decay") {
		preset.AlphaDecay = policies.Decay{Every: 1, Factor: f.AlphaDecay}
	}
	return preset
}

// AgentConfig builds the learner parameters for algorithm from its preset.
func (f *Flags) AgentConfig(algorithm string) policies.AgentConfig {
	preset := f.Preset(algorithm)
	return policies.AgentConfig{
		Gamma:        f.Gamma,
		Epsilon:      preset.Epsilon,
		Alpha:        preset.Alpha,
		Rule:         policies.RuleFromAlpha(preset.Alpha),
		EpsilonDecay: preset.EpsilonDecay,
		AlphaDecay:   preset.AlphaDecay,
		Seed:         f.Seed,
	}
}
