package game

import (
	"fmt"
	"strings"

	"github.com/muesli/termenv"
)

// Render draws the board for turn diagnostics. When colored is true the
// style degrades to whatever profile the terminal supports.
func (p *Position) Render(colored bool) string {
	profile := termenv.Ascii
	if colored {
		profile = termenv.ColorProfile()
	}
	blackStone := profile.String("X").Foreground(profile.Color("0")).Bold()
	whiteStone := profile.String("O").Foreground(profile.Color("7")).Bold()
	koPoint := profile.String("*").Foreground(profile.Color("1"))

	var b strings.Builder
	b.WriteString("   ")
	for x := 0; x < p.size; x++ {
		fmt.Fprintf(&b, "%c ", gtpColumns[x])
	}
	b.WriteByte('\n')
	for y := 0; y < p.size; y++ {
		fmt.Fprintf(&b, "%2d ", p.size-y)
		for x := 0; x < p.size; x++ {
			i := y*p.size + x
			switch {
			case p.board[i] == Black:
				b.WriteString(blackStone.String())
			case p.board[i] == White:
				b.WriteString(whiteStone.String())
			case i == p.ko:
				b.WriteString(koPoint.String())
			default:
				b.WriteByte('.')
			}
			b.WriteByte(' ')
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "to play: %s, move %d", p.toPlay, p.moves)
	return b.String()
}
