package inference

import "goeval/game"

// Result is one network evaluation: a policy over board points plus pass
// (length size*size+1) and a value in [-1, 1] from the perspective of the
// side to move.
type Result struct {
	Policy []float32
	Value  float32
}

// Backend runs raw batched inference. Implementations must tolerate any
// batch size up to their configured maximum.
type Backend interface {
	Name() string
	Infer(batch []*game.Position) ([]Result, error)
	Close() error
}

// Service is the per-worker face of the inference layer. Evaluate is safe
// to call concurrently from any match worker; StartMatch and EndMatch are
// lifecycle hooks paired exactly once per match so the service can account
// for the number of in-flight matches when sizing batches.
type Service interface {
	Name() string
	StartMatch(blackName, whiteName string)
	EndMatch(blackName, whiteName string)
	Evaluate(pos *game.Position) (Result, error)
}
