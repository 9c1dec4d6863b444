package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/zeu5/tabular-rl/benchmarks/common"
)

// EnvPrefix namespaces the environment variables that override flags,
// e.g. TABULAR_EPISODES or TABULAR_SAVE_PATH.
const EnvPrefix = "TABULAR"

var flags *common.Flags = common.DefaultFlags()

func AddFlags(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	addRunFlags(pf)
	addAgentFlags(pf)
	addOutputFlags(pf)

	// Bind flags to viper for environment variable support
	viper.BindPFlags(pf)
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func addRunFlags(pf *pflag.FlagSet) {
	pf.String("save-path", flags.SavePath, "Path to save results")
	pf.String("run-id", flags.RunID, "Identifier recorded with the results (random when empty)")

	pf.Int("num-runs", flags.NumRuns, "Number of runs")
	pf.Int("episodes", flags.Episodes, "Number of episodes (replaces the algorithm preset when set)")
	pf.Int("max-steps", flags.MaxSteps, "Maximum steps per episode")
}

func addAgentFlags(pf *pflag.FlagSet) {
	pf.Float64("gamma", flags.Gamma, "Discount factor")
	pf.Float64("epsilon", flags.Epsilon, "Exploration probability (replaces the algorithm preset when set)")
	pf.Float64("alpha", flags.Alpha, "Step size (negative averages all returns, Monte Carlo only)")
	pf.Uint64("seed", flags.Seed, "Random seed")
	pf.Float64("epsilon-decay", flags.EpsilonDecay, "Factor applied to epsilon by the decay schedule (0 disables)")
	pf.Int("epsilon-decay-from", flags.EpsilonDecayFrom, "First episode of the epsilon decay schedule")
	pf.Int("epsilon-decay-every", flags.EpsilonDecayEvery, "Episodes between epsilon decays")
	pf.Float64("alpha-decay", flags.AlphaDecay, "Factor applied to alpha after every Q-learning episode (0 disables)")
}

func addOutputFlags(pf *pflag.FlagSet) {
	pf.String("track", flags.TrackFile, "Track layout file (built-in track when empty)")
	pf.Bool("colors", flags.Colors, "Color terminal drawings")
	pf.Bool("debug", flags.Debug, "Save trajectories to <save-path>/traces")
	pf.String("log-level", flags.LogLevel, "Log level (debug, info, warn, error)")
	pf.Int("report-every", flags.ReportEvery, "Episodes between printed reports (0 disables)")
	pf.Int("chart-window", flags.ChartWindow, "Moving average window of the learning curve chart")
}

// UpdateFlags loads the command line and environment into flags. Preset
// values given explicitly are marked so they win over the algorithm presets.
func UpdateFlags() error {
	if err := viper.Unmarshal(flags); err != nil {
		return err
	}
	for _, key := range common.PresetKeys {
		if viper.IsSet(key) {
			flags.Override(key)
		}
	}
	return nil
}
