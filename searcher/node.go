package searcher

import (
	"math"

	"goeval/game"
)

// node is one search-tree position. valueSum accumulates evaluations from
// the perspective of the player to move at the node, so a parent reads its
// child's worth negated.
type node struct {
	move     game.Move
	prior    float32
	parent   *node
	children []*node
	visits   int
	vloss    int
	valueSum float64
}

// q is the mean value for the player to move at this node.
func (n *node) q() float64 {
	if n.visits == 0 {
		return 0
	}
	return n.valueSum / float64(n.visits)
}

// edgeValue is the worth of moving into n from the chooser's perspective.
// Virtual losses count as lost visits so that concurrent selection spreads
// across siblings. fpu is the estimate used before the first real visit.
func (n *node) edgeValue(fpu float64) float64 {
	total := n.visits + n.vloss
	if total == 0 {
		return fpu
	}
	return (-n.valueSum - float64(n.vloss)) / float64(total)
}

func (n *node) puct(sqrtParentVisits, fpu float64) float64 {
	u := C_PUCT * float64(n.prior) * sqrtParentVisits / float64(1+n.visits+n.vloss)
	return n.edgeValue(fpu) + u
}

// selectChild picks the PUCT-maximal child. penalty shifts the
// first-play-urgency estimate for unvisited children below the parent's
// value, clamped to [-1, 1].
func (n *node) selectChild(penalty float64) *node {
	fpu := n.q() - penalty
	if fpu < -1 {
		fpu = -1
	} else if fpu > 1 {
		fpu = 1
	}
	sqrtVisits := math.Sqrt(float64(n.visits + n.vloss + 1))

	var best *node
	bestScore := math.Inf(-1)
	for _, child := range n.children {
		if score := child.puct(sqrtVisits, fpu); score > bestScore {
			bestScore = score
			best = child
		}
	}
	return best
}

func (n *node) addVirtualLoss() {
	for cur := n; cur != nil; cur = cur.parent {
		cur.vloss++
	}
}

func (n *node) revertVirtualLoss() {
	for cur := n; cur != nil; cur = cur.parent {
		cur.vloss--
	}
}

// backup propagates an evaluation up the tree, flipping perspective at
// every step. v is from the perspective of the player to move at n.
func (n *node) backup(v float64) {
	for cur := n; cur != nil; cur = cur.parent {
		cur.visits++
		cur.valueSum += v
		v = -v
	}
}

// mostVisited returns the child with the highest visit count.
func (n *node) mostVisited() *node {
	var best *node
	for _, child := range n.children {
		if best == nil || child.visits > best.visits {
			best = child
		}
	}
	return best
}
