package game

// Benson-style pass-alive analysis. A chain is unconditionally alive when
// it keeps at least two vital regions: enclosed regions whose every empty
// point is a liberty of the chain.

// passAliveMask marks the points of color c belonging to pass-alive chains.
func (p *Position) passAliveMask(c Color) []bool {
	n := len(p.board)
	chainID := make([]int, n)
	for i := range chainID {
		chainID[i] = -1
	}

	// Enumerate chains of c.
	var chains [][]int
	for i, col := range p.board {
		if col != c || chainID[i] >= 0 {
			continue
		}
		id := len(chains)
		stones, _ := chainAt(p.board, p.size, i)
		for _, s := range stones {
			chainID[s] = id
		}
		chains = append(chains, stones)
	}
	if len(chains) == 0 {
		return make([]bool, n)
	}

	// Enumerate enclosed regions: connected components of points not of
	// color c. For each, record the bordering chains and whether the region
	// is vital to each of them (every empty point is that chain's liberty).
	type region struct {
		borders map[int]bool // chain ids adjacent to the region
		vital   map[int]bool // chain ids the region is vital to
		alive   bool
	}
	var regions []*region
	regionID := make([]int, n)
	for i := range regionID {
		regionID[i] = -1
	}
	for i, col := range p.board {
		if col == c || regionID[i] >= 0 {
			continue
		}
		r := &region{borders: map[int]bool{}}
		id := len(regions)
		// Chains adjacent to every empty point so far; starts as the full
		// border of the first empty point and shrinks by intersection.
		var vitalTo map[int]bool
		stack := []int{i}
		regionID[i] = id
		for len(stack) > 0 {
			s := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			adjacent := map[int]bool{}
			p.eachNeighbor(s, func(nb int) {
				if p.board[nb] == c {
					cid := chainID[nb]
					r.borders[cid] = true
					adjacent[cid] = true
					return
				}
				if regionID[nb] < 0 {
					regionID[nb] = id
					stack = append(stack, nb)
				}
			})
			if p.board[s] == Empty {
				if vitalTo == nil {
					vitalTo = adjacent
				} else {
					for cid := range vitalTo {
						if !adjacent[cid] {
							delete(vitalTo, cid)
						}
					}
				}
			}
		}
		if vitalTo == nil {
			vitalTo = map[int]bool{} // no empty points: vital to nothing
		}
		r.vital = vitalTo
		r.alive = true
		regions = append(regions, r)
	}

	// Iteratively drop chains with fewer than two vital live regions, then
	// kill regions bordering a dropped chain, until stable.
	aliveChain := make([]bool, len(chains))
	for i := range aliveChain {
		aliveChain[i] = true
	}
	for {
		changed := false
		for cid := range chains {
			if !aliveChain[cid] {
				continue
			}
			vital := 0
			for _, r := range regions {
				if r.alive && r.vital[cid] {
					vital++
				}
			}
			if vital < 2 {
				aliveChain[cid] = false
				changed = true
			}
		}
		for _, r := range regions {
			if !r.alive {
				continue
			}
			for cid := range r.borders {
				if !aliveChain[cid] {
					r.alive = false
					changed = true
					break
				}
			}
		}
		if !changed {
			break
		}
	}

	mask := make([]bool, n)
	for cid, stones := range chains {
		if !aliveChain[cid] {
			continue
		}
		for _, s := range stones {
			mask[s] = true
		}
	}
	return mask
}

// AllSettled reports whether every point's ownership is already decided:
// each point either belongs to a pass-alive chain, or sits in a region
// whose pass-alive border is all one color. Further play cannot change the
// outcome of such a position.
func (p *Position) AllSettled() bool {
	blackAlive := p.passAliveMask(Black)
	whiteAlive := p.passAliveMask(White)

	seen := make([]bool, len(p.board))
	for i := range p.board {
		if blackAlive[i] || whiteAlive[i] || seen[i] {
			continue
		}
		// Flood the region of unsettled points and collect the colors of
		// the pass-alive chains enclosing it.
		borderBlack, borderWhite := false, false
		stack := []int{i}
		seen[i] = true
		for len(stack) > 0 {
			s := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			p.eachNeighbor(s, func(nb int) {
				switch {
				case blackAlive[nb]:
					borderBlack = true
				case whiteAlive[nb]:
					borderWhite = true
				case !seen[nb]:
					seen[nb] = true
					stack = append(stack, nb)
				}
			})
		}
		if borderBlack == borderWhite {
			// Enclosed by both colors, or by neither: still contested.
			return false
		}
	}
	return true
}
