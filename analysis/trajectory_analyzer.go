package analysis

import (
	"bytes"
	"fmt"
	"os"
	"path"

	"github.com/rs/zerolog/log"

	"github.com/zeu5/tabular-rl/core"
	"github.com/zeu5/tabular-rl/util"
)

// DrawFunc renders visits on top of the environment layout.
type DrawFunc[S comparable, A core.Action] func([]core.Visit[S, A]) string

// TrajectoryAnalyzer dumps every trajectory from thresholdEpisode onwards to
// a text file under <savePath>/traces.
type TrajectoryAnalyzer[S comparable, A core.Action] struct {
	savePath string
	exp      string
	draw     DrawFunc[S, A]
	// will save the trajectory only after the episode number reaches this threshold
	thresholdEpisode int
}

func (a *TrajectoryAnalyzer[S, A]) Analyze(eCtx *core.EpisodeContext[S, A]) {
	if eCtx.Episode < a.thresholdEpisode {
		return
	}
	buf := new(bytes.Buffer)
	visits := eCtx.Trajectory.Visits()
	for i, v := range visits {
		buf.WriteString(fmt.Sprintf("Step %d: %s\n", i, v))
	}
	if a.draw != nil {
		buf.WriteString("\n")
		buf.WriteString(a.draw(visits))
	}
	buf.WriteString(fmt.Sprintf("\nSteps: %d, Return: %g, Terminated: %t\n", eCtx.Result.Steps, eCtx.Result.Return, eCtx.Result.Terminated))

	fileName := fmt.Sprintf("%d_trace_%d.txt", eCtx.Run, eCtx.Episode)
	if a.exp != "" {
		fileName = fmt.Sprintf("%d_%s_trace_%d.txt", eCtx.Run, a.exp, eCtx.Episode)
	}
	file := path.Join(a.savePath, fileName)
	if err := os.WriteFile(file, buf.Bytes(), 0644); err != nil {
		log.Error().Err(err).Str("file", file).Msg("failed to save trajectory")
	}
}

func (a *TrajectoryAnalyzer[S, A]) DataSet() core.DataSet {
	return nil
}

func (a *TrajectoryAnalyzer[S, A]) Reset() {
	// do nothing
}

type TrajectoryAnalyzerConstructor[S comparable, A core.Action] struct {
	SavePath         string
	ThresholdEpisode int
	Draw             DrawFunc[S, A]
}

func NewTrajectoryAnalyzerConstructor[S comparable, A core.Action](savePath string, thresholdEpisode int, draw DrawFunc[S, A]) *TrajectoryAnalyzerConstructor[S, A] {
	return &TrajectoryAnalyzerConstructor[S, A]{
		SavePath:         savePath,
		ThresholdEpisode: thresholdEpisode,
		Draw:             draw,
	}
}

func (c *TrajectoryAnalyzerConstructor[S, A]) NewAnalyzer(exp string, _ int) core.Analyzer[S, A] {
	dir := path.Join(c.SavePath, "traces")
	if err := util.EnsureDir(dir); err != nil {
		log.Error().Err(err).Msg("failed to create traces directory")
	}
	return &TrajectoryAnalyzer[S, A]{
		savePath:         dir,
		exp:              exp,
		draw:             c.Draw,
		thresholdEpisode: c.ThresholdEpisode,
	}
}
