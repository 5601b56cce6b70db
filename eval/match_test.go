package eval

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"goeval/game"
	"goeval/inference"
)

// fakeService counts lifecycle pairings and serves empty evaluations.
type fakeService struct {
	mu     sync.Mutex
	starts int
	ends   int
}

func (f *fakeService) Name() string { return "fake" }

func (f *fakeService) StartMatch(black, white string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts++
}

func (f *fakeService) EndMatch(black, white string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ends++
}

func (f *fakeService) Evaluate(pos *game.Position) (inference.Result, error) {
	return inference.Result{}, nil
}

// scriptedAgent replays a fixed move list and mirrors the rules engine's
// two-pass ending with a canned score.
type scriptedAgent struct {
	g          *game.Game
	color      game.Color
	moves      []game.Move
	next       int
	count      int
	passes     int
	settledAt  int // AllSettled once count reaches this; 0 means never
	finalScore float64
	suggests   int
	rejectOwn  bool
}

func (a *scriptedAgent) SuggestMove(readouts int) (game.Move, error) {
	a.suggests++
	if a.next >= len(a.moves) {
		return game.Pass, nil
	}
	m := a.moves[a.next]
	a.next++
	return m, nil
}

func (a *scriptedAgent) apply(m game.Move) {
	if m.IsPass() {
		a.passes++
	} else {
		a.passes = 0
	}
	a.count++
	if a.passes >= 2 && !a.g.IsOver() {
		a.g.SetScore(a.finalScore)
	}
}

func (a *scriptedAgent) PlayMove(m game.Move) bool {
	if a.rejectOwn {
		return false
	}
	if m.IsResign() {
		a.g.SetResignation(a.color)
		return true
	}
	a.apply(m)
	return true
}

func (a *scriptedAgent) PlayOpponentsMove(m game.Move) bool {
	a.apply(m)
	return true
}

func (a *scriptedAgent) MoveCount() int { return a.count }

func (a *scriptedAgent) AllSettled() bool {
	return a.settledAt > 0 && a.count >= a.settledAt
}

func (a *scriptedAgent) RootValue() float64 { return 0 }
func (a *scriptedAgent) Describe() string   { return "" }

// fakeContender spawns scripted agents and remembers them for assertions.
type fakeContender struct {
	name    string
	svc     inference.Service
	build   func(g *game.Game, color game.Color) *scriptedAgent
	mu      sync.Mutex
	spawned []*scriptedAgent
}

func (f *fakeContender) Name() string               { return f.name }
func (f *fakeContender) Readouts() int              { return 1 }
func (f *fakeContender) Service() inference.Service { return f.svc }

func (f *fakeContender) NewAgent(g *game.Game, color game.Color) (Agent, error) {
	a := f.build(g, color)
	f.mu.Lock()
	f.spawned = append(f.spawned, a)
	f.mu.Unlock()
	return a, nil
}

func playsThenResigns(opening ...game.Move) func(*game.Game, game.Color) *scriptedAgent {
	return func(g *game.Game, color game.Color) *scriptedAgent {
		moves := append(append([]game.Move(nil), opening...), game.Resign)
		return &scriptedAgent{g: g, color: color, moves: moves}
	}
}

func TestMatchResignation(t *testing.T) {
	svc := &fakeService{}
	// Black opens; white resigns on its first turn.
	black := &fakeContender{name: "candidate", svc: svc,
		build: playsThenResigns(game.MoveAt(2, 2, 9), game.MoveAt(3, 3, 9))}
	white := &fakeContender{name: "reference", svc: svc,
		build: playsThenResigns()}

	g := game.NewGame(black.Name(), white.Name(), 9, 5.5)
	m := newMatch(0, black, white, g, 40, false)
	outcome, err := m.run()

	require.NoError(t, err)
	require.Equal(t, Finalized, m.state)
	require.True(t, g.Resigned())
	require.Equal(t, Outcome{Winner: "candidate", Loser: "reference"}, outcome,
		"The opposing seat's policy is credited with the win")

	require.Equal(t, 1, black.spawned[0].count,
		"No move reaches the opponent after a resignation")
	require.Equal(t, 1, white.spawned[0].suggests)
}

func TestMatchResignationByBlack(t *testing.T) {
	svc := &fakeService{}
	black := &fakeContender{name: "candidate", svc: svc, build: playsThenResigns()}
	white := &fakeContender{name: "reference", svc: svc, build: playsThenResigns()}

	g := game.NewGame(black.Name(), white.Name(), 9, 5.5)
	m := newMatch(0, black, white, g, 40, false)
	outcome, err := m.run()

	require.NoError(t, err)
	require.Equal(t, Outcome{Winner: "reference", Loser: "candidate"}, outcome,
		"Attribution follows the seat mapping, not the color")
	require.Zero(t, white.spawned[0].suggests, "The white seat never gets a turn")
}

func TestMatchLifecycleHooksPairExactlyOnce(t *testing.T) {
	t.Run("on resignation", func(t *testing.T) {
		svc := &fakeService{}
		black := &fakeContender{name: "a", svc: svc, build: playsThenResigns()}
		white := &fakeContender{name: "b", svc: svc, build: playsThenResigns()}

		g := game.NewGame("a", "b", 9, 5.5)
		_, err := newMatch(0, black, white, g, 40, false).run()

		require.NoError(t, err)
		require.Equal(t, 1, svc.starts)
		require.Equal(t, 1, svc.ends)
	})

	t.Run("distinct services each get one pairing", func(t *testing.T) {
		svcA, svcB := &fakeService{}, &fakeService{}
		black := &fakeContender{name: "a", svc: svcA, build: playsThenResigns(game.MoveAt(0, 0, 9))}
		white := &fakeContender{name: "b", svc: svcB, build: playsThenResigns()}

		g := game.NewGame("a", "b", 9, 5.5)
		_, err := newMatch(0, black, white, g, 40, false).run()

		require.NoError(t, err)
		require.Equal(t, 1, svcA.starts)
		require.Equal(t, 1, svcA.ends)
		require.Equal(t, 1, svcB.starts)
		require.Equal(t, 1, svcB.ends)
	})

	t.Run("on invariant violation", func(t *testing.T) {
		svc := &fakeService{}
		black := &fakeContender{name: "a", svc: svc,
			build: func(g *game.Game, color game.Color) *scriptedAgent {
				return &scriptedAgent{g: g, color: color, moves: []game.Move{game.MoveAt(0, 0, 9)}, rejectOwn: true}
			}}
		white := &fakeContender{name: "b", svc: svc, build: playsThenResigns()}

		g := game.NewGame("a", "b", 9, 5.5)
		_, err := newMatch(0, black, white, g, 40, false).run()

		require.Error(t, err, "A rejected own move is an unrecoverable bug")
		require.Equal(t, 1, svc.starts)
		require.Equal(t, 1, svc.ends, "The end hook fires even on the failure path")
	})
}

func TestMatchPassAliveShortCircuit(t *testing.T) {
	svc := &fakeService{}
	settled := func(score float64) func(*game.Game, game.Color) *scriptedAgent {
		return func(g *game.Game, color game.Color) *scriptedAgent {
			return &scriptedAgent{
				g: g, color: color,
				moves:      []game.Move{game.MoveAt(0, 0, 9), game.MoveAt(1, 1, 9)},
				settledAt:  4,
				finalScore: score,
			}
		}
	}
	black := &fakeContender{name: "candidate", svc: svc, build: settled(5)}
	white := &fakeContender{name: "reference", svc: svc, build: settled(5)}

	g := game.NewGame(black.Name(), white.Name(), 9, 5.5)
	m := newMatch(0, black, white, g, 4, false)
	outcome, err := m.run()

	require.NoError(t, err)
	require.True(t, g.IsOver(), "Forced passes let the rules engine end the game")
	require.Equal(t, Finalized, m.state)
	require.Equal(t, "candidate", outcome.Winner)

	// Four searched moves, then only forced passes: no further SuggestMove.
	require.Equal(t, 2, black.spawned[0].suggests)
	require.Equal(t, 2, white.spawned[0].suggests)
}

func TestMatchPassAliveRespectsMinimumMoveCount(t *testing.T) {
	svc := &fakeService{}
	// Settled from the start, but the minimum move count has not been
	// reached, so searched moves are still played.
	build := func(g *game.Game, color game.Color) *scriptedAgent {
		return &scriptedAgent{
			g: g, color: color,
			moves:      []game.Move{game.MoveAt(0, 0, 9)},
			settledAt:  1,
			finalScore: -3,
		}
	}
	black := &fakeContender{name: "a", svc: svc, build: build}
	white := &fakeContender{name: "b", svc: svc, build: build}

	g := game.NewGame("a", "b", 9, 5.5)
	m := newMatch(0, black, white, g, 2, false)
	outcome, err := m.run()

	require.NoError(t, err)
	require.GreaterOrEqual(t, black.spawned[0].suggests, 1,
		"Search still runs before the minimum move count")
	require.Equal(t, "b", outcome.Winner, "A negative result favors the white seat")
}
