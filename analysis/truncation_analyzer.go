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

// TailLength is the number of final visits saved for a truncated episode.
const TailLength = 50

type TruncationDataset struct {
	Episodes []int
}

// TruncationAnalyzer lists the episodes that ran out of steps. When a save
// path is set, the tail of each such trajectory is written to
// <savePath>/truncated.
type TruncationAnalyzer[S comparable, A core.Action] struct {
	savePath string
	exp      string
	episodes []int
}

func NewTruncationAnalyzer[S comparable, A core.Action](savePath string) *TruncationAnalyzer[S, A] {
	return &TruncationAnalyzer[S, A]{
		savePath: savePath,
		episodes: make([]int, 0),
	}
}

func (a *TruncationAnalyzer[S, A]) Analyze(eCtx *core.EpisodeContext[S, A]) {
	if !eCtx.Result.Truncated {
		return
	}
	a.episodes = append(a.episodes, eCtx.Episode)
	if a.savePath == "" {
		return
	}

	trajectory := eCtx.Trajectory
	buf := new(bytes.Buffer)
	buf.WriteString(fmt.Sprintf("Truncated after %d steps, Return: %g\n", eCtx.Result.Steps, eCtx.Result.Return))
	for i := trajectory.Len() - util.MinInt(TailLength, trajectory.Len()); i < trajectory.Len(); i++ {
		buf.WriteString(fmt.Sprintf("Step %d: %s\n", i, trajectory.Visit(i)))
	}

	fileName := fmt.Sprintf("%d_truncated_%d.txt", eCtx.Run, eCtx.Episode)
	if a.exp != "" {
		fileName = fmt.Sprintf("%d_%s_truncated_%d.txt", eCtx.Run, a.exp, eCtx.Episode)
	}
	file := path.Join(a.savePath, fileName)
	if err := os.WriteFile(file, buf.Bytes(), 0644); err != nil {
		log.Error().Err(err).Str("file", file).Msg("failed to save truncated trajectory")
	}
}

func (a *TruncationAnalyzer[S, A]) DataSet() core.DataSet {
	return &TruncationDataset{Episodes: util.CopyIntSlice(a.episodes)}
}

func (a *TruncationAnalyzer[S, A]) Reset() {
	a.episodes = make([]int, 0)
}

type TruncationAnalyzerConstructor[S comparable, A core.Action] struct {
	SavePath string
}

func NewTruncationAnalyzerConstructor[S comparable, A core.Action](savePath string) *TruncationAnalyzerConstructor[S, A] {
	return &TruncationAnalyzerConstructor[S, A]{
		SavePath: savePath,
	}
}

func (c *TruncationAnalyzerConstructor[S, A]) NewAnalyzer(exp string, _ int) core.Analyzer[S, A] {
	a := NewTruncationAnalyzer[S, A]("")
	a.exp = exp
	if c.SavePath != "" {
		a.savePath = path.Join(c.SavePath, "truncated")
		if err := util.EnsureDir(a.savePath); err != nil {
			log.Error().Err(err).Msg("failed to create truncated directory")
		}
	}
	return a
}
