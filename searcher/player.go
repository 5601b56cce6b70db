package searcher

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"

	"goeval/game"
	"goeval/inference"
)

// Player drives tree search for one seat of one match. It owns its view of
// the board; the opposing player's view is kept in sync only through
// explicit move application.
type Player struct {
	name  string
	color game.Color
	game  *game.Game
	pos   *game.Position
	svc   inference.Service
	opts  Options
	rng   *rand.Rand
	root  *node
}

func NewPlayer(name string, color game.Color, g *game.Game, svc inference.Service, opts Options) (*Player, error) {
	if svc == nil {
		return nil, fmt.Errorf("policy %q has no inference service bound", name)
	}
	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	// Offset by color so two players sharing a seed do not mirror each other.
	seed += uint64(color)

	return &Player{
		name:  name,
		color: color,
		game:  g,
		pos:   game.NewPosition(g.Size(), g.Komi()),
		svc:   svc,
		opts:  opts,
		rng:   rand.New(rand.NewSource(seed)),
	}, nil
}

func (p *Player) Name() string      { return p.name }
func (p *Player) Color() game.Color { return p.color }
func (p *Player) MoveCount() int    { return p.pos.MoveCount() }

// AllSettled reports whether this player's view of the board is fully
// pass-alive, i.e. every point's ownership is decided.
func (p *Player) AllSettled() bool {
	return p.pos.AllSettled()
}

// RootValue is the current search value estimate for the player to move,
// zero before the first search.
func (p *Player) RootValue() float64 {
	if p.root == nil {
		return 0
	}
	return p.root.q()
}

// SuggestMove searches up to the given readout budget and returns the best
// move, or Resign when resignation is enabled and the position is lost.
func (p *Player) SuggestMove(readouts int) (game.Move, error) {
	if err := p.ensureRoot(); err != nil {
		return game.Pass, err
	}
	if p.opts.InjectNoise {
		p.injectNoise()
	}
	for p.root.visits < readouts {
		if err := p.step(readouts); err != nil {
			return game.Pass, err
		}
	}
	if p.opts.ResignEnabled && p.root.q() < p.opts.ResignThreshold {
		return game.Resign, nil
	}
	best := p.root.mostVisited()
	if best == nil {
		return game.Pass, nil
	}
	return best.move, nil
}

// step runs one batch of leaf evaluations. Leaves are selected under
// virtual loss so the batch spreads over distinct lines, then evaluated
// concurrently; the inference service coalesces these calls with those of
// other match workers.
func (p *Player) step(readouts int) error {
	width := p.opts.VirtualLosses
	if width < 1 {
		width = 1
	}
	if rem := readouts - p.root.visits; width > rem {
		width = rem
	}

	leaves := make([]*node, 0, width)
	positions := make([]*game.Position, 0, width)
	for len(leaves) < width {
		leaf, pos := p.selectLeaf()
		leaf.addVirtualLoss()
		leaves = append(leaves, leaf)
		positions = append(positions, pos)
	}

	results := make([]inference.Result, len(leaves))
	errs := make([]error, len(leaves))
	var wg sync.WaitGroup
	for i := range leaves {
		if positions[i].GameOver() {
			continue
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = p.svc.Evaluate(positions[i])
		}(i)
	}
	wg.Wait()

	for i, leaf := range leaves {
		leaf.revertVirtualLoss()
		pos := positions[i]
		if pos.GameOver() {
			leaf.backup(terminalValue(pos))
			continue
		}
		if errs[i] != nil {
			return fmt.Errorf("evaluate for %s: %w", p.name, errs[i])
		}
		p.expand(leaf, pos, results[i])
		leaf.backup(float64(results[i].Value))
	}
	return nil
}

func (p *Player) ensureRoot() error {
	if p.root != nil {
		return nil
	}
	p.root = &node{}
	if p.pos.GameOver() {
		return nil
	}
	res, err := p.svc.Evaluate(p.pos)
	if err != nil {
		return fmt.Errorf("evaluate root for %s: %w", p.name, err)
	}
	p.expand(p.root, p.pos, res)
	p.root.backup(float64(res.Value))
	return nil
}

// selectLeaf descends from the root by PUCT until it reaches a node without
// children, replaying moves onto a scratch position along the way.
func (p *Player) selectLeaf() (*node, *game.Position) {
	cur := p.root
	pos := p.pos.Clone()
	for len(cur.children) > 0 && !pos.GameOver() {
		child := cur.selectChild(p.opts.ValueInitPenalty)
		if err := pos.Play(child.move); err != nil {
			panic(fmt.Sprintf("search tree holds illegal move %s: %v", child.move.GTP(pos.Size()), err))
		}
		cur = child
	}
	return cur, pos
}

// expand attaches one child per legal move with priors taken from the
// policy head, renormalized over the legal set. A leaf reached twice within
// one batch is only expanded once.
func (p *Player) expand(leaf *node, pos *game.Position, res inference.Result) {
	if len(leaf.children) > 0 {
		return
	}
	points := pos.Size() * pos.Size()
	var total float32
	for i := 0; i <= points; i++ {
		m := game.Move(i)
		if i == points {
			m = game.Pass
		}
		if !pos.Legal(m) {
			continue
		}
		prior := float32(0)
		if i < len(res.Policy) {
			prior = res.Policy[i]
		}
		leaf.children = append(leaf.children, &node{move: m, prior: prior, parent: leaf})
		total += prior
	}
	if total > 0 {
		for _, child := range leaf.children {
			child.prior /= total
		}
	}
}

// terminalValue scores a finished position for the player to move at it.
func terminalValue(pos *game.Position) float64 {
	score := pos.Score()
	switch {
	case score == 0:
		return 0
	case (score > 0) == (pos.ToPlay() == game.Black):
		return 1
	}
	return -1
}

// PlayMove applies this player's own chosen move: it is recorded in the
// shared game, and a natural end by two passes is scored. Returns false if
// the position rejects the move.
func (p *Player) PlayMove(m game.Move) bool {
	if m.IsResign() {
		p.game.SetResignation(p.color)
		return true
	}
	value := p.RootValue()
	if err := p.pos.Play(m); err != nil {
		log.Error().Err(err).Msgf("player %s: move %s rejected", p.name, m.GTP(p.pos.Size()))
		return false
	}
	p.game.RecordMove(p.color, m, value)
	p.advance(m)
	if p.pos.GameOver() {
		p.game.SetScore(p.pos.Score())
	}
	return true
}

// PlayOpponentsMove mirrors the opposing seat's move into this player's
// view of the board. The opponent records it; we only track state.
func (p *Player) PlayOpponentsMove(m game.Move) bool {
	if err := p.pos.Play(m); err != nil {
		log.Error().Err(err).Msgf("player %s: opponent move %s rejected", p.name, m.GTP(p.pos.Size()))
		return false
	}
	p.advance(m)
	return true
}

// advance reroots the tree under the played move, keeping the subtree's
// statistics for the next turn.
func (p *Player) advance(m game.Move) {
	if p.root == nil {
		return
	}
	for _, child := range p.root.children {
		if child.move == m {
			child.parent = nil
			p.root = child
			return
		}
	}
	p.root = nil
}

// Describe renders the board and root statistics for verbose diagnostics.
func (p *Player) Describe() string {
	var b strings.Builder
	b.WriteString(p.pos.Render(true))
	if p.root != nil {
		fmt.Fprintf(&b, "\n%s: %d readouts, Q=%.4f", p.name, p.root.visits, p.root.q())
	}
	return b.String()
}
