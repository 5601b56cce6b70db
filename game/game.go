package game

import "fmt"

// MoveInfo is one recorded turn: the move, the acting color and the search
// value estimate at the time of the move. Used for diagnostics and match
// records only, never for control flow.
type MoveInfo struct {
	Move  Move
	Color Color
	Value float64
}

// Game is the shared record of one match. Both players hold a reference and
// append their own moves to it; seat names are fixed at setup and identify
// policies, not colors.
type Game struct {
	blackName string
	whiteName string
	size      int
	komi      float64

	moves    []MoveInfo
	comments []string

	over     bool
	resigned bool
	result   float64 // positive favors Black
}

func NewGame(blackName, whiteName string, size int, komi float64) *Game {
	return &Game{
		blackName: blackName,
		whiteName: whiteName,
		size:      size,
		komi:      komi,
	}
}

func (g *Game) BlackName() string { return g.blackName }
func (g *Game) WhiteName() string { return g.whiteName }
func (g *Game) Size() int         { return g.size }
func (g *Game) Komi() float64     { return g.komi }
func (g *Game) Moves() []MoveInfo { return g.moves }
func (g *Game) Comments() []string {
	return g.comments
}

func (g *Game) RecordMove(c Color, m Move, value float64) {
	g.moves = append(g.moves, MoveInfo{Move: m, Color: c, Value: value})
}

func (g *Game) AddComment(text string) {
	g.comments = append(g.comments, text)
}

// SetResignation ends the game with the resigning color losing.
func (g *Game) SetResignation(loser Color) {
	g.over = true
	g.resigned = true
	if loser == Black {
		g.result = -1
	} else {
		g.result = 1
	}
}

// SetScore ends the game with an area score, positive favoring Black.
func (g *Game) SetScore(score float64) {
	g.over = true
	g.result = score
}

func (g *Game) IsOver() bool   { return g.over }
func (g *Game) Resigned() bool { return g.resigned }

// Result is the signed outcome: positive favors the first-moving seat
// (Black), negative the second. Only valid once the game is over.
func (g *Game) Result() float64 { return g.result }

func (g *Game) ResultString() string {
	switch {
	case !g.over:
		return "ongoing"
	case g.resigned && g.result > 0:
		return "B+R"
	case g.resigned:
		return "W+R"
	case g.result > 0:
		return fmt.Sprintf("B+%.1f", g.result)
	case g.result < 0:
		return fmt.Sprintf("W+%.1f", -g.result)
	}
	return "Draw"
}
