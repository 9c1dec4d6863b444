package racetrack

import (
	"os"
	"strings"

	"github.com/pkg/errors"
)

const (
	Open   = ' '
	Start  = '1'
	Finish = '2'
	Wall   = '@'
)

const (
	WallReward   = -1.5
	FinishReward = 1.0
	MoveReward   = -1.0
)

// DefaultTrack is the layout used when no track file is given.
const DefaultTrack = `@@@@@@@@@@@@@@@@@@@@@@
@            @@    2 @
@            @@      @
@            @@      @
@            @@      @
@                    @
@                    @
@                    @
@     @@             @
@     @@             @
@ 1   @@             @
@@@@@@@@@@@@@@@@@@@@@@`

var ErrInvalidTrack = errors.New("invalid track")

// Track is an immutable grid layout. Rows are indexed by Y then X.
type Track struct {
	board    [][]rune
	width    int
	height   int
	starts   []Position
	finishes []Position
}

// ParseTrack reads a layout made of Open, Start, Finish and Wall cells. All
// rows must have the same width and there must be at least one start and
// one finish cell.
func ParseTrack(text string) (*Track, error) {
	text = strings.TrimRight(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if text == "" {
		return nil, errors.Wrap(ErrInvalidTrack, "empty layout")
	}

	t := &Track{
		board:    make([][]rune, 0),
		starts:   make([]Position, 0),
		finishes: make([]Position, 0),
	}
	for y, line := range strings.Split(text, "\n") {
		row := []rune(line)
		if y == 0 {
			t.width = len(row)
		} else if len(row) != t.width {
			return nil, errors.Wrapf(ErrInvalidTrack, "row %d has width %d, expected %d", y, len(row), t.width)
		}
		for x, c := range row {
			switch c {
			case Start:
				t.starts = append(t.starts, Position{X: x, Y: y})
			case Finish:
				t.finishes = append(t.finishes, Position{X: x, Y: y})
			case Open, Wall:
			default:
				return nil, errors.Wrapf(ErrInvalidTrack, "unknown cell %q at (%d, %d)", c, x, y)
			}
		}
		t.board = append(t.board, row)
	}
	t.height = len(t.board)

	if len(t.starts) == 0 {
		return nil, errors.Wrap(ErrInvalidTrack, "no start cell")
	}
	if len(t.finishes) == 0 {
		return nil, errors.Wrap(ErrInvalidTrack, "no finish cell")
	}
	return t, nil
}

func LoadTrack(path string) (*Track, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading track %s", path)
	}
	t, err := ParseTrack(string(bs))
	if err != nil {
		return nil, errors.Wrapf(err, "parsing track %s", path)
	}
	return t, nil
}

func (t *Track) Width() int {
	return t.width
}

func (t *Track) Height() int {
	return t.height
}

func (t *Track) Starts() []Position {
	return append([]Position(nil), t.starts...)
}

func (t *Track) Finishes() []Position {
	return append([]Position(nil), t.finishes...)
}

func (t *Track) Inside(p Position) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < t.width && p.Y < t.height
}

// CellAt returns the cell at p. Positions off the board read as walls.
func (t *Track) CellAt(p Position) rune {
	if !t.Inside(p) {
		return Wall
	}
	return t.board[p.Y][p.X]
}

// Move applies m at p. Leaving the board keeps the car at p and scores
// the cell it stays on; hitting a wall keeps the car at p with WallReward.
func (t *Track) Move(p Position, m Move) (Position, float64) {
	dx, dy := m.delta()
	target := Position{X: p.X + dx, Y: p.Y + dy}
	if !t.Inside(target) {
		target = p
	}

	switch t.CellAt(target) {
	case Wall:
		return p, WallReward
	case Finish:
		return target, FinishReward
	default:
		return target, MoveReward
	}
}

func (t *Track) String() string {
	var b strings.Builder
	for _, row := range t.board {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}
