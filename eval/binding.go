package eval

import (
	"fmt"
	"math"

	"goeval/game"
	"goeval/inference"
	"goeval/searcher"
)

// Agent is what the match runner needs from a per-match player. It is
// satisfied by searcher.Player; tests drive the runner with scripted fakes.
type Agent interface {
	SuggestMove(readouts int) (game.Move, error)
	PlayMove(m game.Move) bool
	PlayOpponentsMove(m game.Move) bool
	MoveCount() int
	AllSettled() bool
	RootValue() float64
	Describe() string
}

// Contender is one side of the evaluation: a named policy able to spawn a
// fresh agent per match.
type Contender interface {
	Name() string
	Readouts() int
	Service() inference.Service
	NewAgent(g *game.Game, color game.Color) (Agent, error)
}

// Binding associates a policy name with an inference service and a fixed
// set of search parameters. It is immutable once constructed and shared
// read-only by every match that uses it.
type Binding struct {
	name string
	svc  inference.Service
	opts searcher.Options
}

// NewBinding validates and freezes one policy's configuration. The resign
// threshold is stored as -abs(threshold) to guard against sign mistakes.
func NewBinding(name string, svc inference.Service, opts searcher.Options) (*Binding, error) {
	if name == "" {
		return nil, fmt.Errorf("policy name must not be empty")
	}
	if svc == nil {
		return nil, fmt.Errorf("policy %q: no inference service bound", name)
	}
	if opts.Readouts < 1 {
		return nil, fmt.Errorf("policy %q: readouts must be positive, got %d", name, opts.Readouts)
	}
	opts.ResignThreshold = -math.Abs(opts.ResignThreshold)
	return &Binding{name: name, svc: svc, opts: opts}, nil
}

func (b *Binding) Name() string               { return b.name }
func (b *Binding) Readouts() int              { return b.opts.Readouts }
func (b *Binding) Service() inference.Service { return b.svc }

// Options returns a copy of the bound search parameters.
func (b *Binding) Options() searcher.Options { return b.opts }

func (b *Binding) NewAgent(g *game.Game, color game.Color) (Agent, error) {
	return searcher.NewPlayer(b.name, color, g, b.svc, b.opts)
}
