package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/zeu5/tabular-rl/benchmarks/common"
	"github.com/zeu5/tabular-rl/benchmarks/racetrack"
	"github.com/zeu5/tabular-rl/core"
)

func RaceTrackCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "racetrack",
		Short: "Learn to drive a car around a grid track",
	}

	cmd.AddCommand(
		trainCommand(common.MonteCarlo, "Train with on-policy first-visit Monte Carlo control"),
		trainCommand(common.Sarsa, "Train with SARSA"),
		trainCommand(common.QLearning, "Train with Q-learning"),
		compareCommand(),
		watchCommand(),
	)

	return cmd
}

func trainCommand(algorithm, short string) *cobra.Command {
	return &cobra.Command{
		Use:   algorithm,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, doneCh := interruptContext()
			defer close(doneCh)

			_, err := racetrack.Train(ctx, flags, algorithm, cmd.OutOrStdout(), logger)
			return err
		},
	}
}

func compareCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "compare [algorithm...]",
		Short:     "Compare learning curves of the algorithms on the same track",
		ValidArgs: common.Comparable,
		Args:      cobra.OnlyValidArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			algorithms := args
			if len(algorithms) == 0 {
				algorithms = common.Comparable
			}
			cmp, err := racetrack.PrepareComparison(flags, algorithms)
			if err != nil {
				return err
			}
			cmp.Logger = logger
			cmp.Out = cmd.OutOrStdout()

			ctx, doneCh := interruptContext()
			defer close(doneCh)

			results := cmp.Run(ctx, flags.NumRuns, &core.RunConfig{
				Episodes: flags.Episodes,
				MaxSteps: flags.MaxSteps,
			})
			for name, result := range results {
				if result.IsError() {
					logger.Error().Err(result.Error).Str("experiment", name).Msg("experiment failed")
				}
			}
			logger.Info().Str("save_path", flags.SavePath).Msg("comparison saved")
			return nil
		},
	}
}

func watchCommand() *cobra.Command {
	var delay time.Duration
	cmd := &cobra.Command{
		Use:       "watch algorithm",
		Short:     "Train, then step through one episode and draw the car after every move",
		ValidArgs: common.Algorithms,
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, doneCh := interruptContext()
			defer close(doneCh)

			return racetrack.Watch(ctx, flags, args[0], delay, cmd.OutOrStdout(), logger)
		},
	}
	cmd.Flags().DurationVar(&delay, "delay", 200*time.Millisecond, "Pause between steps")
	return cmd
}
