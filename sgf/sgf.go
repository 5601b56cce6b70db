// Package sgf serializes finished match records as single-line SGF game
// trees: a root node of header properties followed by the main line of
// moves.
package sgf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"goeval/game"
)

// node is one SGF node: an ordered list of property idents with values.
type node struct {
	props []property
}

type property struct {
	ident  string
	values []string
}

func (n *node) add(ident string, values ...string) {
	n.props = append(n.props, property{ident: ident, values: values})
}

func (n *node) serialize(b *strings.Builder) {
	b.WriteByte(';')
	for _, p := range n.props {
		b.WriteString(p.ident)
		for _, v := range p.values {
			b.WriteByte('[')
			b.WriteString(escape(v))
			b.WriteByte(']')
		}
	}
}

// escape protects the two characters with meaning inside a property value.
func escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, "]", `\]`)
}

// vertex converts a move to SGF coordinates; a pass is the empty value.
func vertex(m game.Move, size int) string {
	if m.IsPass() {
		return ""
	}
	x := int(m) % size
	y := int(m) / size
	return fmt.Sprintf("%c%c", 'a'+x, 'a'+y)
}

// Serialize renders the match record as SGF text. When trace is set, each
// move node carries the search value estimate as a comment.
func Serialize(g *game.Game, trace bool) string {
	root := &node{}
	root.add("GM", "1")
	root.add("FF", "4")
	root.add("SZ", fmt.Sprintf("%d", g.Size()))
	root.add("KM", fmt.Sprintf("%.1f", g.Komi()))
	root.add("PB", g.BlackName())
	root.add("PW", g.WhiteName())
	root.add("RE", g.ResultString())
	if comments := g.Comments(); len(comments) > 0 {
		root.add("C", strings.Join(comments, "\n"))
	}

	var b strings.Builder
	b.WriteByte('(')
	root.serialize(&b)
	for _, mi := range g.Moves() {
		if mi.Move.IsResign() {
			break // the RE property carries the resignation
		}
		mn := &node{}
		ident := "B"
		if mi.Color == game.White {
			ident = "W"
		}
		mn.add(ident, vertex(mi.Move, g.Size()))
		if trace {
			mn.add("C", fmt.Sprintf("Q=%.4f", mi.Value))
		}
		mn.serialize(&b)
	}
	b.WriteByte(')')
	return b.String()
}

// Write stores the record as dir/name.sgf, creating dir as needed.
func Write(dir, name string, g *game.Game, trace bool) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create sgf dir: %w", err)
	}
	path := filepath.Join(dir, name+".sgf")
	if err := os.WriteFile(path, []byte(Serialize(g, trace)), 0o644); err != nil {
		return fmt.Errorf("write sgf %s: %w", path, err)
	}
	return nil
}
