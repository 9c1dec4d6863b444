package racetrack

import "fmt"

// Position is a cell of the track. X grows to the right, Y downwards.
type Position struct {
	X int
	Y int
}

func (p Position) String() string {
	return fmt.Sprintf("(%d, %d)", p.X, p.Y)
}

// Move is the action set of the race track.
type Move int

const (
	Up Move = iota
	Left
	Right
	Down
)

// Moves lists every move in canonical order.
var Moves = []Move{Up, Left, Right, Down}

func (m Move) Ordinal() int {
	return int(m)
}

func (m Move) String() string {
	switch m {
	case Up:
		return "UP"
	case Left:
		return "LEFT"
	case Right:
		return "RIGHT"
	case Down:
		return "DOWN"
	default:
		return fmt.Sprintf("Move(%d)", int(m))
	}
}

// Glyph is the character drawn for the move on a rendered track.
func (m Move) Glyph() rune {
	switch m {
	case Up:
		return '↑'
	case Left:
		return '<'
	case Right:
		return '>'
	case Down:
		return '↓'
	default:
		return '?'
	}
}

func (m Move) delta() (int, int) {
	switch m {
	case Up:
		return 0, -1
	case Left:
		return -1, 0
	case Right:
		return 1, 0
	case Down:
		return 0, 1
	default:
		return 0, 0
	}
}

// Actions returns the legal moves of a position. Every move is legal
// everywhere; bumping into a wall or the edge leaves the car in place.
func Actions(_ Position) []Move {
	return Moves
}
