package searcher

// Hyperparameters for tree search

const C_PUCT = 1.25 // Exploration constant

// Root noise, used only when Options.InjectNoise is set
const NOISE_ALPHA = 0.03
const NOISE_FRACTION = 0.25

// Options are one policy's fixed search parameters. They are set when the
// policy is bound and shared read-only by every player spawned from it.
type Options struct {
	Readouts         int
	VirtualLosses    int
	Seed             uint64 // 0 means time-based
	ValueInitPenalty float64
	ResignEnabled    bool
	ResignThreshold  float64 // negative
	InjectNoise      bool
}
