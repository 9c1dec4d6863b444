package core_test

import (
	"fmt"

	"github.com/zeu5/tabular-rl/core"
)

type testAction int

const (
	only testAction = iota
	other
)

func (a testAction) Ordinal() int {
	return int(a)
}

func (a testAction) String() string {
	return fmt.Sprintf("a%d", int(a))
}

func onlyAction(_ string) []testAction {
	return []testAction{only}
}

// twoStateEnv goes from "start" to the terminal "end" with reward 1.
type twoStateEnv struct {
	resets int
	hints  []*string
}

func (e *twoStateEnv) Reset(hint *string) string {
	e.resets++
	e.hints = append(e.hints, hint)
	return "start"
}

func (e *twoStateEnv) IsTerminal(s string) bool {
	return s == "end"
}

func (e *twoStateEnv) SampleNext(_ string, _ testAction) core.NextStateSample[string] {
	return core.NextStateSample[string]{State: "end", Reward: 1.0}
}

func (e *twoStateEnv) DrawTrajectory(visits []core.Visit[string, testAction]) string {
	return fmt.Sprint(visits)
}

type twoStateConstructor struct{}

func (twoStateConstructor) NewEnvironment(_ int) core.Environment[string, testAction] {
	return &twoStateEnv{}
}

// loopEnv never terminates.
type loopEnv struct{}

func (loopEnv) Reset(_ *string) string {
	return "loop"
}

func (loopEnv) IsTerminal(_ string) bool {
	return false
}

func (loopEnv) SampleNext(s string, _ testAction) core.NextStateSample[string] {
	return core.NextStateSample[string]{State: s, Reward: -1.0}
}

func (loopEnv) DrawTrajectory(_ []core.Visit[string, testAction]) string {
	return ""
}
