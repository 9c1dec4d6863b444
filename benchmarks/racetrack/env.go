package racetrack

import (
	"strings"

	"github.com/logrusorgru/aurora"
	erand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/sampleuv"

	"github.com/zeu5/tabular-rl/core"
)

// Environment runs episodes on a Track. Episodes start on a start cell
// chosen uniformly at random and end on any finish cell.
type Environment struct {
	track *Track
	au    aurora.Aurora

	// uniform over the start cells, restored after every draw
	starts sampleuv.Weighted
}

var _ core.Environment[Position, Move] = &Environment{}

func NewEnvironment(track *Track, seed uint64, colors bool) *Environment {
	weights := make([]float64, len(track.starts))
	for i := range weights {
		weights[i] = 1
	}
	return &Environment{
		track:  track,
		au:     aurora.NewAurora(colors),
		starts: sampleuv.NewWeighted(weights, erand.NewSource(seed)),
	}
}

func (e *Environment) Track() *Track {
	return e.track
}

// Reset ignores the hint: every episode starts from a random start cell.
func (e *Environment) Reset(_ *Position) Position {
	i, ok := e.starts.Take()
	if !ok {
		return e.track.starts[0]
	}
	e.starts.Reweight(i, 1)
	return e.track.starts[i]
}

func (e *Environment) IsTerminal(p Position) bool {
	return e.track.CellAt(p) == Finish
}

func (e *Environment) SampleNext(p Position, m Move) core.NextStateSample[Position] {
	next, reward := e.track.Move(p, m)
	return core.NextStateSample[Position]{State: next, Reward: reward}
}

// DrawTrajectory draws the glyph of the action taken on every visited
// cell. When visits repeat a cell, the last one in the slice wins.
func (e *Environment) DrawTrajectory(visits []core.Visit[Position, Move]) string {
	drawing := e.cells()
	for _, v := range visits {
		if !e.track.Inside(v.State) {
			continue
		}
		drawing[v.State.Y][v.State.X] = e.au.Green(string(v.Action.Glyph())).String()
	}
	return join(drawing)
}

// DrawPolicy draws the greedy move of every open and start cell. Cells
// without a known move are left blank.
func (e *Environment) DrawPolicy(greedy func(Position) (Move, bool)) string {
	drawing := e.cells()
	for y, row := range e.track.board {
		for x, c := range row {
			if c != Open && c != Start {
				continue
			}
			if m, ok := greedy(Position{X: x, Y: y}); ok {
				drawing[y][x] = e.au.Cyan(string(m.Glyph())).String()
			}
		}
	}
	return join(drawing)
}

// DrawCar marks the car's position on the board.
func (e *Environment) DrawCar(p Position) string {
	drawing := e.cells()
	if e.track.Inside(p) {
		drawing[p.Y][p.X] = e.au.Red("*").String()
	}
	return join(drawing)
}

func (e *Environment) cells() [][]string {
	out := make([][]string, e.track.height)
	for y, row := range e.track.board {
		out[y] = make([]string, len(row))
		for x, c := range row {
			switch c {
			case Wall:
				out[y][x] = e.au.Faint(string(c)).String()
			case Finish:
				out[y][x] = e.au.Yellow(string(c)).String()
			default:
				out[y][x] = string(c)
			}
		}
	}
	return out
}

func join(cells [][]string) string {
	var b strings.Builder
	for _, row := range cells {
		for _, c := range row {
			b.WriteString(c)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

type EnvironmentConstructor struct {
	Track  *Track
	Seed   uint64
	Colors bool
}

var _ core.EnvironmentConstructor[Position, Move] = &EnvironmentConstructor{}

func (c *EnvironmentConstructor) NewEnvironment(instance int) core.Environment[Position, Move] {
	return NewEnvironment(c.Track, c.Seed+uint64(instance), c.Colors)
}
