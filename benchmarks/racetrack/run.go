package racetrack

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/zeu5/tabular-rl/analysis"
	"github.com/zeu5/tabular-rl/benchmarks/common"
	"github.com/zeu5/tabular-rl/core"
	"github.com/zeu5/tabular-rl/policies"
	"github.com/zeu5/tabular-rl/util"
)

var ErrUnknownAlgorithm = errors.New("unknown algorithm")

// DebugEpisodes is the number of final episodes whose trajectories are saved
// in debug mode.
const DebugEpisodes = 10

// learner pairs the strategy seen by the runner with the shared agent store
// the drivers read and anneal.
type learner struct {
	core.Learner[Position, Move]
	agent *policies.Agent[Position, Move]
}

func newLearner(algorithm string, config policies.AgentConfig) (*learner, error) {
	return bindLearner(algorithm, policies.NewAgent(Actions, config))
}

// bindLearner wraps agent in the improvement strategy named by algorithm.
func bindLearner(algorithm string, agent *policies.Agent[Position, Move]) (*learner, error) {
	switch algorithm {
	case common.MonteCarlo:
		return &learner{Learner: policies.NewMonteCarlo(agent), agent: agent}, nil
	case common.Sarsa:
		return &learner{Learner: policies.NewSarsa(agent), agent: agent}, nil
	case common.QLearning:
		return &learner{Learner: policies.NewQLearning(agent), agent: agent}, nil
	default:
		return nil, errors.Wrapf(ErrUnknownAlgorithm, "%q (expected one of %s)", algorithm, strings.Join(common.Algorithms, ", "))
	}
}

func learnerConstructor(algorithm string, config policies.AgentConfig) (core.LearnerConstructor[Position, Move], error) {
	switch algorithm {
	case common.MonteCarlo:
		return &policies.MonteCarloConstructor[Position, Move]{Actions: Actions, Config: config}, nil
	case common.Sarsa:
		return &policies.SarsaConstructor[Position, Move]{Actions: Actions, Config: config}, nil
	case common.QLearning:
		return &policies.QLearningConstructor[Position, Move]{Actions: Actions, Config: config}, nil
	case common.Random:
		return &policies.RandomConstructor[Position, Move]{Actions: Actions, Seed: config.Seed}, nil
	default:
		return nil, errors.Wrapf(ErrUnknownAlgorithm, "%q", algorithm)
	}
}

func loadTrack(flags *common.Flags) (*Track, error) {
	if flags.TrackFile == "" {
		return ParseTrack(DefaultTrack)
	}
	return LoadTrack(flags.TrackFile)
}

// PrepareComparison sets up one experiment per algorithm on the same track,
// with learning-curve, coverage and truncation analyses.
func PrepareComparison(flags *common.Flags, algorithms []string) (*core.Comparison[Position, Move], error) {
	track, err := loadTrack(flags)
	if err != nil {
		return nil, err
	}
	envConstructor := &EnvironmentConstructor{Track: track, Seed: flags.Seed, Colors: false}

	comparison := core.NewComparison[Position, Move]()
	if flags.Debug {
		draw := NewEnvironment(track, flags.Seed, false).DrawTrajectory
		comparison.AddAnalysis("Trajectories", analysis.NewTrajectoryAnalyzerConstructor[Position, Move](flags.SavePath, flags.Episodes-DebugEpisodes, draw), analysis.NewNoOpComparatorConstructor())
	}
	comparison.AddAnalysis("Episodes", analysis.NewEpisodeAnalyzerConstructor[Position, Move](), analysis.NewMultiComparatorConstructor(
		analysis.NewJSONComparatorConstructor(flags.SavePath, "episodes.json"),
		analysis.NewChartComparatorConstructor(flags.SavePath, flags.ChartWindow),
	))
	comparison.AddAnalysis("Coverage", analysis.NewCoverageAnalyzerConstructor[Position, Move](), analysis.NewJSONComparatorConstructor(flags.SavePath, "coverage.json"))
	comparison.AddAnalysis("Truncations", analysis.NewTruncationAnalyzerConstructor[Position, Move](flags.SavePath), analysis.NewJSONComparatorConstructor(flags.SavePath, "truncations.json"))

	for _, algorithm := range algorithms {
		if err := flags.ValidateFor(algorithm); err != nil {
			return nil, err
		}
		lC, err := learnerConstructor(algorithm, flags.AgentConfig(algorithm))
		if err != nil {
			return nil, err
		}
		comparison.AddExperiment(&core.Experiment[Position, Move]{
			Name:        algorithm,
			Environment: envConstructor,
			Learner:     lC,
		})
	}
	return comparison, nil
}

// Train plays the preset number of episodes of one algorithm and prints the
// last trajectory and the agent parameters every flags.ReportEvery episodes.
// The final greedy policy is drawn at the end.
func Train(ctx context.Context, flags *common.Flags, algorithm string, out io.Writer, logger zerolog.Logger) (*policies.Agent[Position, Move], error) {
	if err := flags.ValidateFor(algorithm); err != nil {
		return nil, err
	}
	track, err := loadTrack(flags)
	if err != nil {
		return nil, err
	}
	l, err := newLearner(algorithm, flags.AgentConfig(algorithm))
	if err != nil {
		return nil, err
	}
	env := NewEnvironment(track, flags.Seed, flags.Colors)
	runner := core.NewRunner[Position, Move](env, l)
	runner.MaxSteps = flags.MaxSteps

	episodes := flags.Preset(algorithm).Episodes
	stats := analysis.NewEpisodeAnalyzer[Position, Move]()
	resetter, resets := l.Learner.(core.EpisodeResetter[Position, Move])

	logger.Info().Str("algorithm", algorithm).Int("episodes", episodes).Msg("training started")
	for episode := 0; episode < episodes; episode++ {
		select {
		case <-ctx.Done():
			logger.Warn().Int("episode", episode).Msg("training interrupted")
			return l.agent, core.ErrCancelled
		default:
		}

		eCtx := &core.EpisodeContext[Position, Move]{Experiment: algorithm, Episode: episode}
		if resets {
			resetter.ResetEpisode(eCtx)
		}
		result, err := runner.RunOneEpisode()
		if err != nil {
			return l.agent, errors.Wrapf(err, "episode %d", episode)
		}
		eCtx.Trajectory = runner.Trajectory()
		eCtx.Result = result
		stats.Analyze(eCtx)

		if flags.ReportEvery > 0 && (episode%flags.ReportEvery == 0 || episode == episodes-1) {
			printStats(out, env, runner, l.agent, episode, result)
		}
	}

	fmt.Fprintf(out, "Greedy policy:\n%s\n", env.DrawPolicy(l.agent.GreedyAction))
	summary := stats.Summary()
	logger.Info().
		Str("algorithm", algorithm).
		Int("terminated", summary.Terminated).
		Int("truncated", summary.Truncated).
		Float64("mean_steps", summary.MeanSteps).
		Float64("mean_return", summary.MeanReturn).
		Msg("training finished")

	if flags.SavePath != "" {
		if err := util.SaveJson(path.Join(flags.SavePath, algorithm+"_episodes.json"), stats.DataSet()); err != nil {
			return l.agent, errors.Wrap(err, "saving episode statistics")
		}
		if err := util.SaveJson(path.Join(flags.SavePath, algorithm+"_values.json"), actionValues(l.agent)); err != nil {
			return l.agent, errors.Wrap(err, "saving action values")
		}
	}
	return l.agent, nil
}

type actionValue struct {
	State  string
	Action string
	Value  float64
}

// actionValues lists the learned Q values ordered by state and action.
func actionValues(agent *policies.Agent[Position, Move]) []actionValue {
	values := make([]actionValue, 0)
	for sa, v := range agent.Q().All() {
		values = append(values, actionValue{State: sa.State.String(), Action: sa.Action.String(), Value: v})
	}
	slices.SortFunc(values, func(a, b actionValue) int {
		if c := cmp.Compare(a.State, b.State); c != 0 {
			return c
		}
		return cmp.Compare(a.Action, b.Action)
	})
	return values
}

func printStats(out io.Writer, env *Environment, runner *core.Runner[Position, Move], agent *policies.Agent[Position, Move], episode int, result core.EpisodeResult) {
	trajectory := runner.Trajectory()
	fmt.Fprintf(out, "============= EPISODE %d =====\n", episode)
	fmt.Fprintln(out, env.DrawTrajectory(trajectory.ReversedVisits()))
	fmt.Fprintf(out, "Trajectory: %d Steps\n", trajectory.Len())
	if result.Terminated {
		fmt.Fprintln(out, "Termination was reached!")
	} else {
		fmt.Fprintln(out, "Step budget exhausted.")
	}
	fmt.Fprintf(out, "\nepsilon: %g\ngamma: %g\nalpha: %g\n\n", agent.Epsilon, agent.Gamma, agent.Alpha)
}

// Watch trains like Train and then steps through one more
// episode, redrawing the car after every transition.
func Watch(ctx context.Context, flags *common.Flags, algorithm string, delay time.Duration, out io.Writer, logger zerolog.Logger) error {
	quiet := *flags
	quiet.ReportEvery = 0
	quiet.SavePath = ""
	agent, err := Train(ctx, &quiet, algorithm, io.Discard, logger)
	if err != nil {
		return err
	}

	track, err := loadTrack(flags)
	if err != nil {
		return err
	}
	// Keep learning on the trained tables.
	l, err := bindLearner(algorithm, agent)
	if err != nil {
		return err
	}

	env := NewEnvironment(track, flags.Seed+1, flags.Colors)
	runner := core.NewRunner[Position, Move](env, l)

	printer := util.NewTerminalPrinter(out, delay/2+time.Millisecond)
	frame := printer.NewFrame()
	printer.Start(ctx)
	defer printer.Stop()

	if err := runner.Start(); err != nil {
		return err
	}
	for step := 0; runner.CanStillStep() && step < flags.MaxSteps; step++ {
		select {
		case <-ctx.Done():
			return core.ErrCancelled
		case <-time.After(delay):
		}
		if err := runner.Step(); err != nil {
			return err
		}
		frame.Set(fmt.Sprintf("%sStep %d at %s\n", env.DrawCar(runner.CurrentState()), step+1, runner.CurrentState()))
	}
	if err := runner.End(); err != nil {
		return err
	}
	result := runner.Result()
	logger.Info().Int("steps", result.Steps).Bool("terminated", result.Terminated).Float64("return", result.Return).Msg("watched episode")
	return nil
}
