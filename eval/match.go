package eval

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"goeval/game"
)

// MatchState tracks a match through its lifecycle.
type MatchState int

const (
	Setup MatchState = iota
	InProgress
	Resigned
	PassTerminated
	Scored
	Finalized
)

func (s MatchState) String() string {
	switch s {
	case Setup:
		return "setup"
	case InProgress:
		return "in progress"
	case Resigned:
		return "resigned"
	case PassTerminated:
		return "pass terminated"
	case Scored:
		return "scored"
	case Finalized:
		return "finalized"
	}
	return "unknown"
}

// Outcome attributes one finished match to policies by name, never by the
// color they happened to play.
type Outcome struct {
	Winner string
	Loser  string
}

// match runs one game between two contenders. The seat-to-policy mapping is
// fixed at construction: black always moves first; which policy sits there
// is the orchestrator's choice.
type match struct {
	id                int
	black, white      Contender
	game              *game.Game
	state             MatchState
	minPassAliveMoves int
	verbose           bool
}

func newMatch(id int, black, white Contender, g *game.Game, minPassAliveMoves int, verbose bool) *match {
	return &match{
		id:                id,
		black:             black,
		white:             white,
		game:              g,
		minPassAliveMoves: minPassAliveMoves,
		verbose:           verbose,
	}
}

type seat struct {
	agent     Agent
	contender Contender
	color     game.Color
}

// run plays the match to a terminal state and reports the outcome. Any
// error is an unrecoverable configuration problem or invariant violation;
// there is no per-match retry.
func (m *match) run() (Outcome, error) {
	blackAgent, err := m.black.NewAgent(m.game, game.Black)
	if err != nil {
		return Outcome{}, fmt.Errorf("match %d: spawn black agent: %w", m.id, err)
	}
	whiteAgent, err := m.white.NewAgent(m.game, game.White)
	if err != nil {
		return Outcome{}, fmt.Errorf("match %d: spawn white agent: %w", m.id, err)
	}

	// The lifecycle hooks pair exactly once per match, on every
	// termination path.
	m.startHooks()
	defer m.endHooks()

	m.state = InProgress
	cur := &seat{agent: blackAgent, contender: m.black, color: game.Black}
	next := &seat{agent: whiteAgent, contender: m.white, color: game.White}

	for !m.game.IsOver() {
		if cur.agent.MoveCount() >= m.minPassAliveMoves && cur.agent.AllSettled() {
			if err := m.playOutPasses(&cur, &next); err != nil {
				return Outcome{}, err
			}
			break
		}

		move, err := cur.agent.SuggestMove(cur.contender.Readouts())
		if err != nil {
			return Outcome{}, fmt.Errorf("match %d: %w", m.id, err)
		}
		if !cur.agent.PlayMove(move) {
			return Outcome{}, fmt.Errorf("match %d: %s rejected its own move %s",
				m.id, cur.contender.Name(), move.GTP(m.game.Size()))
		}
		if move.IsResign() {
			// No further moves reach either seat.
			break
		}
		if !next.agent.PlayOpponentsMove(move) {
			return Outcome{}, fmt.Errorf("match %d: %s rejected opponent move %s",
				m.id, next.contender.Name(), move.GTP(m.game.Size()))
		}
		if m.verbose {
			log.Info().Msgf("%d: %s by %s, Q=%.4f", cur.agent.MoveCount(),
				move.GTP(m.game.Size()), cur.contender.Name(), cur.agent.RootValue())
			log.Info().Msg(cur.agent.Describe())
		}
		cur, next = next, cur
	}

	switch {
	case m.game.Resigned():
		m.state = Resigned
	case m.state != PassTerminated:
		m.state = Scored
	}

	outcome := Outcome{Winner: m.black.Name(), Loser: m.white.Name()}
	if m.game.Result() <= 0 {
		outcome = Outcome{Winner: m.white.Name(), Loser: m.black.Name()}
	}
	m.state = Finalized

	if m.verbose {
		log.Info().Msgf("match %d: %s (black was %s)", m.id, m.game.ResultString(), m.game.BlackName())
	}
	return outcome, nil
}

// playOutPasses finishes a fully settled position with forced passes,
// bypassing search. The rules engine still declares the end; the short
// circuit never assigns a result by itself.
func (m *match) playOutPasses(cur, next **seat) error {
	m.state = PassTerminated
	if m.verbose {
		log.Info().Msgf("match %d: board settled after %d moves, passing out", m.id, (*cur).agent.MoveCount())
	}
	for !m.game.IsOver() {
		if !(*cur).agent.PlayMove(game.Pass) {
			return fmt.Errorf("match %d: %s rejected a forced pass", m.id, (*cur).contender.Name())
		}
		if !(*next).agent.PlayOpponentsMove(game.Pass) {
			return fmt.Errorf("match %d: %s rejected a forced pass", m.id, (*next).contender.Name())
		}
		*cur, *next = *next, *cur
	}
	return nil
}

// startHooks notifies each distinct inference service once that the match
// begins, letting it size batches by in-flight matches.
func (m *match) startHooks() {
	m.black.Service().StartMatch(m.black.Name(), m.white.Name())
	if m.white.Service() != m.black.Service() {
		m.white.Service().StartMatch(m.black.Name(), m.white.Name())
	}
}

func (m *match) endHooks() {
	m.black.Service().EndMatch(m.black.Name(), m.white.Name())
	if m.white.Service() != m.black.Service() {
		m.white.Service().EndMatch(m.black.Name(), m.white.Name())
	}
}
