package analysis

import (
	"path"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/zeu5/tabular-rl/core"
	"github.com/zeu5/tabular-rl/util"
)

// JSONComparator saves the datasets of one run keyed by experiment name.
// Experiments that failed have a nil dataset and are skipped.
type JSONComparator struct {
	savePath string
}

var _ core.Comparator = &JSONComparator{}

func NewJSONComparator(savePath string) *JSONComparator {
	return &JSONComparator{
		savePath: savePath,
	}
}

func (c *JSONComparator) Compare(experimentNames []string, datasets []core.DataSet) {
	out := make(map[string]core.DataSet)
	for i, name := range experimentNames {
		if datasets[i] == nil {
			continue
		}
		out[name] = datasets[i]
	}

	if err := util.SaveJson(c.savePath, out); err != nil {
		log.Error().Err(err).Str("file", c.savePath).Msg("failed to save comparison")
	}
}

type JSONComparatorConstructor struct {
	savePath string
	fileName string
}

var _ core.ComparatorConstructor = &JSONComparatorConstructor{}

// NewJSONComparatorConstructor writes to <savePath>/<run>/<fileName>.
func NewJSONComparatorConstructor(savePath, fileName string) *JSONComparatorConstructor {
	return &JSONComparatorConstructor{
		savePath: savePath,
		fileName: fileName,
	}
}

func (c *JSONComparatorConstructor) NewComparator(run int) core.Comparator {
	return NewJSONComparator(path.Join(c.savePath, strconv.Itoa(run), c.fileName))
}

// NoOpComparator discards datasets. It pairs with analyzers that only have
// side effects, such as TrajectoryAnalyzer.
type NoOpComparator struct{}

func (NoOpComparator) Compare(_ []string, _ []core.DataSet) {}

type NoOpComparatorConstructor struct{}

func NewNoOpComparatorConstructor() NoOpComparatorConstructor {
	return NoOpComparatorConstructor{}
}

func (NoOpComparatorConstructor) NewComparator(_ int) core.Comparator {
	return NoOpComparator{}
}
