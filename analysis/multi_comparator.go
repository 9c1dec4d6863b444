package analysis

import "github.com/zeu5/tabular-rl/core"

// MultiComparator hands the same datasets to every comparator in turn.
type MultiComparator []core.Comparator

func (m MultiComparator) Compare(experimentNames []string, datasets []core.DataSet) {
	for _, c := range m {
		c.Compare(experimentNames, datasets)
	}
}

type MultiComparatorConstructor []core.ComparatorConstructor

var _ core.ComparatorConstructor = MultiComparatorConstructor{}

// NewMultiComparatorConstructor lets one analysis feed several outputs.
func NewMultiComparatorConstructor(constructors ...core.ComparatorConstructor) MultiComparatorConstructor {
	return MultiComparatorConstructor(constructors)
}

func (m MultiComparatorConstructor) NewComparator(run int) core.Comparator {
	comparators := make(MultiComparator, len(m))
	for i, c := range m {
		comparators[i] = c.NewComparator(run)
	}
	return comparators
}
