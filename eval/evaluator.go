package eval

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"goeval/export"
	"goeval/game"
	"goeval/sgf"
)

// Exporter hands a finished match record to a remote table. Failures are
// the collaborator's problem to report; they do not abort the run.
type Exporter interface {
	Export(ctx context.Context, g *game.Game, name, tag string) error
}

// Results is the aggregate of one evaluation run.
type Results struct {
	Stats   []PolicyStats // candidate first, reference second
	Elapsed time.Duration
}

type Option func(*Evaluator)

func WithVerbose(verbose bool) Option {
	return func(e *Evaluator) { e.verbose = verbose }
}

func WithBoard(size int, komi float64) Option {
	return func(e *Evaluator) {
		e.boardSize = size
		e.komi = komi
	}
}

func WithMinPassAliveMoves(n int) Option {
	return func(e *Evaluator) { e.minPassAliveMoves = n }
}

// WithSGFDir enables per-match SGF records under dir.
func WithSGFDir(dir string) Option {
	return func(e *Evaluator) { e.sgfDir = dir }
}

// WithExport enables remote export. spec must be of the form
// "project,instance,table"; it is validated when Run starts.
func WithExport(spec, tag string) Option {
	return func(e *Evaluator) {
		e.exportSpec = spec
		e.exportTag = tag
	}
}

// Evaluator plays a fixed number of concurrent matches between a candidate
// and a reference policy and aggregates the outcomes by policy name.
type Evaluator struct {
	candidate  Contender
	reference  Contender
	numMatches int

	boardSize         int
	komi              float64
	minPassAliveMoves int
	verbose           bool
	sgfDir            string
	exportSpec        string
	exportTag         string
	exporter          Exporter

	mu      sync.Mutex
	stats   map[string]*WinStats
	handles []*match
}

func NewEvaluator(candidate, reference Contender, numMatches int, opts ...Option) *Evaluator {
	e := &Evaluator{
		candidate:  candidate,
		reference:  reference,
		numMatches: numMatches,
		boardSize:  19,
		komi:       7.5,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.minPassAliveMoves == 0 {
		// Never short-circuit before the board could plausibly be settled.
		e.minPassAliveMoves = e.boardSize * e.boardSize / 2
	}
	e.Reset()
	return e
}

// Reset clears per-run worker handles and statistics so the evaluator can
// be reused without rebinding policies.
func (e *Evaluator) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handles = nil
	e.stats = make(map[string]*WinStats)
}

// Run plays all matches and blocks until every one of them has finalized.
// Configuration errors abort before any match starts; a worker failure is
// fatal to the whole run, since outcomes are only meaningful in aggregate.
func (e *Evaluator) Run(ctx context.Context) (*Results, error) {
	if e.numMatches < 1 {
		return nil, fmt.Errorf("match count must be positive, got %d", e.numMatches)
	}
	e.Reset()
	start := time.Now()

	if e.exportSpec != "" && e.exporter == nil {
		target, err := export.ParseTarget(e.exportSpec)
		if err != nil {
			return nil, err
		}
		exporter, err := export.Connect(ctx, target)
		if err != nil {
			return nil, fmt.Errorf("connect exporter: %w", err)
		}
		e.exporter = exporter
		defer func() {
			exporter.Close(ctx)
			e.exporter = nil
		}()
	}

	grp, ctx := errgroup.WithContext(ctx)
	for i := 0; i < e.numMatches; i++ {
		// Alternate seats by worker parity so first-move advantage is
		// balanced deterministically across the batch.
		black, white := e.candidate, e.reference
		if i%2 == 1 {
			black, white = white, black
		}
		g := game.NewGame(black.Name(), white.Name(), e.boardSize, e.komi)
		m := newMatch(i, black, white, g, e.minPassAliveMoves, e.verbose && i == 0)
		e.handles = append(e.handles, m)

		grp.Go(func() error {
			outcome, err := m.run()
			if err != nil {
				return err
			}
			e.mu.Lock()
			Accumulate(e.stats, outcome)
			e.mu.Unlock()
			e.emitArtifacts(ctx, m)
			log.Debug().Msgf("match %d finished: %s", m.id, m.game.ResultString())
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	results := &Results{
		Stats: []PolicyStats{
			{Name: e.candidate.Name(), WinStats: *e.stats[e.candidate.Name()]},
			{Name: e.reference.Name(), WinStats: *e.stats[e.reference.Name()]},
		},
		Elapsed: elapsed,
	}
	log.Info().Msgf("evaluated %d matches, total time %s", e.numMatches, elapsed)
	log.Info().Msg("\n" + FormatWinStatsTable(results.Stats))
	return results, nil
}

// emitArtifacts hands the finished record to the configured writers.
// Emission failures are logged, not fatal.
func (e *Evaluator) emitArtifacts(ctx context.Context, m *match) {
	if e.sgfDir == "" && e.exporter == nil {
		return
	}
	name := fmt.Sprintf("%s-%s-%s", uuid.NewString(), m.black.Name(), m.white.Name())
	if e.sgfDir != "" {
		m.game.AddComment(fmt.Sprintf("B inferences: %s", m.black.Service().Name()))
		m.game.AddComment(fmt.Sprintf("W inferences: %s", m.white.Service().Name()))
		if err := sgf.Write(e.sgfDir, name, m.game, true); err != nil {
			log.Error().Err(err).Msgf("match %d: write SGF", m.id)
		}
	}
	if e.exporter != nil {
		if err := e.exporter.Export(ctx, m.game, name, e.exportTag); err != nil {
			log.Error().Err(err).Msgf("match %d: export record", m.id)
		}
	}
}
