package policies

import (
	"fmt"

	erand "golang.org/x/exp/rand"
)

type testAction int

const (
	north testAction = iota
	east
	south
)

func (a testAction) Ordinal() int {
	return int(a)
}

func (a testAction) String() string {
	return fmt.Sprintf("a%d", int(a))
}

func threeActions(_ string) []testAction {
	// deliberately out of canonical order
	return []testAction{south, north, east}
}

func noActions(_ string) []testAction {
	return nil
}

func newTestAgent(gamma, epsilon, alpha float64) *Agent[string, testAction] {
	return NewAgent(threeActions, AgentConfig{
		Gamma:   gamma,
		Epsilon: epsilon,
		Alpha:   alpha,
		Rule:    RuleFromAlpha(alpha),
		Source:  erand.NewSource(7),
	})
}
