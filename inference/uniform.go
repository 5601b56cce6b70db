package inference

import "goeval/game"

// Uniform is a trivial backend: a flat policy and a fixed value for every
// position. It stands in for a real network in tests and dry runs, the same
// way a no-batching proxy would.
type Uniform struct {
	Value float32
}

func (u Uniform) Name() string {
	return "uniform"
}

func (u Uniform) Infer(batch []*game.Position) ([]Result, error) {
	results := make([]Result, len(batch))
	for i, pos := range batch {
		n := pos.Size()*pos.Size() + 1
		policy := make([]float32, n)
		for j := range policy {
			policy[j] = 1 / float32(n)
		}
		results[i] = Result{Policy: policy, Value: u.Value}
	}
	return results, nil
}

func (u Uniform) Close() error {
	return nil
}
