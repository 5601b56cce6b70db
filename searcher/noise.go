package searcher

import (
	"math"

	"golang.org/x/exp/rand"
)

// injectNoise mixes Dirichlet noise into the root priors to diversify
// exploration. Evaluation runs leave this disabled; it exists for policies
// configured to play with selfplay-style randomness.
func (p *Player) injectNoise() {
	if p.root == nil || len(p.root.children) == 0 {
		return
	}
	noise := make([]float64, len(p.root.children))
	var total float64
	for i := range noise {
		noise[i] = sampleGamma(p.rng, NOISE_ALPHA)
		total += noise[i]
	}
	if total == 0 {
		return
	}
	for i, child := range p.root.children {
		child.prior = float32((1-NOISE_FRACTION)*float64(child.prior) + NOISE_FRACTION*noise[i]/total)
	}
}

// sampleGamma draws from Gamma(alpha, 1) by Marsaglia-Tsang, with the
// standard boost for alpha < 1.
func sampleGamma(rng *rand.Rand, alpha float64) float64 {
	if alpha < 1 {
		u := rng.Float64()
		for u == 0 {
			u = rng.Float64()
		}
		return sampleGamma(rng, alpha+1) * math.Pow(u, 1/alpha)
	}
	d := alpha - 1.0/3.0
	c := 1 / math.Sqrt(9*d)
	for {
		x := rng.NormFloat64()
		v := 1 + c*x
		if v <= 0 {
			continue
		}
		v = v * v * v
		u := rng.Float64()
		if u < 1-0.0331*x*x*x*x {
			return d * v
		}
		if math.Log(u) < 0.5*x*x+d*(1-v+math.Log(v)) {
			return d * v
		}
	}
}
