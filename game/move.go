package game

import "fmt"

// Color identifies a board point state or a player's seat color.
type Color int8

const (
	Empty Color = iota
	Black
	White
)

func (c Color) Opponent() Color {
	switch c {
	case Black:
		return White
	case White:
		return Black
	}
	return Empty
}

func (c Color) String() string {
	switch c {
	case Black:
		return "B"
	case White:
		return "W"
	}
	return "."
}

// Move is a point index into the board, or one of the special moves.
type Move int

const (
	Pass   Move = -1
	Resign Move = -2
)

// GTP column letters skip "I" by convention.
const gtpColumns = "ABCDEFGHJKLMNOPQRST"

func (m Move) IsPass() bool {
	return m == Pass
}

func (m Move) IsResign() bool {
	return m == Resign
}

// MoveAt returns the move playing at column x, row y (0-based, row 0 at the
// top of the board).
func MoveAt(x, y, size int) Move {
	return Move(y*size + x)
}

// GTP formats the move as a GTP vertex such as "D4", "PASS" or "RESIGN".
// Rows count from the bottom of the board, per GTP.
func (m Move) GTP(size int) string {
	switch {
	case m.IsPass():
		return "PASS"
	case m.IsResign():
		return "RESIGN"
	}
	x := int(m) % size
	y := int(m) / size
	return fmt.Sprintf("%c%d", gtpColumns[x], size-y)
}
