package core

import (
	"context"
	"fmt"
	"io"

	"github.com/gosuri/uilive"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

var ErrCancelled = errors.New("context cancelled")

type LearnerConstructor[S comparable, A Action] interface {
	// NewLearner creates a learner with fresh value and policy tables.
	NewLearner() Learner[S, A]
}

// EpisodeResetter is implemented by learners that adjust themselves before
// each episode, e.g. to anneal exploration.
type EpisodeResetter[S comparable, A Action] interface {
	ResetEpisode(*EpisodeContext[S, A])
}

type EpisodeContext[S comparable, A Action] struct {
	Experiment    string
	Run           int
	Episode       int
	StartTimeStep int

	Trajectory *Trajectory[S, A]
	Result     EpisodeResult
}

type DataSet interface{}

type Analyzer[S comparable, A Action] interface {
	Analyze(*EpisodeContext[S, A])
	DataSet() DataSet
	Reset()
}

type AnalyzerConstructor[S comparable, A Action] interface {
	// new analyzer based on experiment name and run
	NewAnalyzer(string, int) Analyzer[S, A]
}

type Comparator interface {
	Compare([]string, []DataSet)
}

type ComparatorConstructor interface {
	NewComparator(int) Comparator
}

type RunConfig struct {
	Episodes int
	MaxSteps int
}

type Experiment[S comparable, A Action] struct {
	Name        string
	Environment EnvironmentConstructor[S, A]
	Learner     LearnerConstructor[S, A]
}

type ExperimentResult struct {
	CompletedEpisodes  int
	TerminatedEpisodes int
	TruncatedEpisodes  int
	TotalTimeSteps     int

	Error    error
	Datasets map[string]DataSet
}

func (r *ExperimentResult) IsError() bool {
	return r.Error != nil
}

// Comparison plays every experiment for the same number of episodes and
// hands the analyzer datasets of each run to the comparators.
type Comparison[S comparable, A Action] struct {
	Experiments []*Experiment[S, A]
	Analyzers   map[string]AnalyzerConstructor[S, A]
	Comparators map[string]ComparatorConstructor

	Logger zerolog.Logger
	Out    io.Writer
}

func NewComparison[S comparable, A Action]() *Comparison[S, A] {
	return &Comparison[S, A]{
		Experiments: make([]*Experiment[S, A], 0),
		Analyzers:   make(map[string]AnalyzerConstructor[S, A]),
		Comparators: make(map[string]ComparatorConstructor),
		Logger:      zerolog.Nop(),
		Out:         io.Discard,
	}
}

func (c *Comparison[S, A]) AddExperiment(e *Experiment[S, A]) {
	c.Experiments = append(c.Experiments, e)
}

func (c *Comparison[S, A]) AddAnalysis(name string, a AnalyzerConstructor[S, A], cmp ComparatorConstructor) {
	c.Analyzers[name] = a
	c.Comparators[name] = cmp
}

type experimentRunContext[S comparable, A Action] struct {
	run       int
	ctx       context.Context
	analyzers map[string]Analyzer[S, A]
	writer    io.Writer
	logger    zerolog.Logger

	*RunConfig
}

func (e *Experiment[S, A]) run(ctx *experimentRunContext[S, A]) *ExperimentResult {
	result := &ExperimentResult{
		Datasets: make(map[string]DataSet),
	}
	learner := e.Learner.NewLearner()
	runner := NewRunner(e.Environment.NewEnvironment(ctx.run), learner)
	if ctx.MaxSteps > 0 {
		runner.MaxSteps = ctx.MaxSteps
	}
	resetter, resets := learner.(EpisodeResetter[S, A])

EpisodeLoop:
	for episode := 0; episode < ctx.Episodes; episode++ {
		select {
		case <-ctx.ctx.Done():
			result.Error = ErrCancelled
			break EpisodeLoop
		default:
		}

		eCtx := &EpisodeContext[S, A]{
			Experiment:    e.Name,
			Run:           ctx.run,
			Episode:       episode,
			StartTimeStep: result.TotalTimeSteps,
		}
		if resets {
			resetter.ResetEpisode(eCtx)
		}

		epResult, err := runner.RunOneEpisode()
		if err != nil {
			result.Error = errors.Wrapf(err, "episode %d", episode)
			break EpisodeLoop
		}
		eCtx.Trajectory = runner.Trajectory()
		eCtx.Result = epResult

		result.CompletedEpisodes++
		result.TotalTimeSteps += epResult.Steps
		if epResult.Truncated {
			result.TruncatedEpisodes++
		} else {
			result.TerminatedEpisodes++
		}

		for _, a := range ctx.analyzers {
			a.Analyze(eCtx)
		}

		fmt.Fprintf(
			ctx.writer,
			"Experiment: %s, Run %d, Episode %d/%d, Timesteps: %d, Terminated: %d, Truncated: %d\n",
			e.Name, ctx.run, episode+1, ctx.Episodes, result.TotalTimeSteps, result.TerminatedEpisodes, result.TruncatedEpisodes,
		)
	}
	if result.Error != nil {
		ctx.logger.Error().Err(result.Error).Str("experiment", e.Name).Int("run", ctx.run).Msg("experiment stopped")
	}

	for name, a := range ctx.analyzers {
		result.Datasets[name] = a.DataSet()
	}
	return result
}

// Run plays all experiments runs times. Experiments are played one after the
// other; each gets its own live progress line.
func (c *Comparison[S, A]) Run(ctx context.Context, runs int, rConfig *RunConfig) map[string]*ExperimentResult {
	var last map[string]*ExperimentResult
	for run := 0; run < runs; run++ {
		select {
		case <-ctx.Done():
			return last
		default:
		}
		c.Logger.Info().Int("run", run).Int("experiments", len(c.Experiments)).Msg("starting run")

		writer := uilive.New()
		writer.Out = c.Out
		writer.Start()
		fmt.Fprintf(writer, "Run %d\n", run)

		results := make(map[string]*ExperimentResult)
		experimentNames := make([]string, 0, len(c.Experiments))
		for _, e := range c.Experiments {
			eCtx := &experimentRunContext[S, A]{
				run:       run,
				ctx:       ctx,
				analyzers: make(map[string]Analyzer[S, A]),
				writer:    writer.Newline(),
				logger:    c.Logger,
				RunConfig: rConfig,
			}
			for name, aC := range c.Analyzers {
				eCtx.analyzers[name] = aC.NewAnalyzer(e.Name, run)
			}

			result := e.run(eCtx)
			results[e.Name] = result
			experimentNames = append(experimentNames, e.Name)
			c.Logger.Info().
				Str("experiment", e.Name).
				Int("run", run).
				Int("episodes", result.CompletedEpisodes).
				Int("terminated", result.TerminatedEpisodes).
				Int("truncated", result.TruncatedEpisodes).
				Int("timesteps", result.TotalTimeSteps).
				Msg("experiment finished")
		}
		writer.Stop()

		// Gather datasets to run comparisons
		for name, cC := range c.Comparators {
			datasets := make([]DataSet, 0, len(experimentNames))
			for _, exp := range experimentNames {
				result := results[exp]
				if result.IsError() {
					datasets = append(datasets, nil)
				} else {
					datasets = append(datasets, result.Datasets[name])
				}
			}
			select {
			case <-ctx.Done():
				return results
			default:
			}
			cC.NewComparator(run).Compare(experimentNames, datasets)
		}
		last = results
	}
	return last
}
