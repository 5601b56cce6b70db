package game

import "fmt"

// Position is one player's view of the board. Each player in a match owns
// its own Position; the two copies are synchronized only through explicit
// move application, never shared.
type Position struct {
	size   int
	komi   float64
	board  []Color
	toPlay Color
	ko     int // point forbidden by simple ko, -1 if none
	moves  int
	passes int // consecutive passes
}

func NewPosition(size int, komi float64) *Position {
	if size < 2 {
		panic("board size must be at least 2")
	}
	return &Position{
		size:   size,
		komi:   komi,
		board:  make([]Color, size*size),
		toPlay: Black,
		ko:     -1,
	}
}

func (p *Position) Clone() *Position {
	q := *p
	q.board = append([]Color(nil), p.board...)
	return &q
}

func (p *Position) Size() int       { return p.size }
func (p *Position) Komi() float64   { return p.komi }
func (p *Position) ToPlay() Color   { return p.toPlay }
func (p *Position) MoveCount() int  { return p.moves }
func (p *Position) Stone(i int) Color {
	return p.board[i]
}

// GameOver reports whether play has ended naturally by two consecutive
// passes. Resignation is tracked by the Game record, not the Position.
func (p *Position) GameOver() bool {
	return p.passes >= 2
}

func (p *Position) eachNeighbor(i int, fn func(n int)) {
	x := i % p.size
	y := i / p.size
	if x > 0 {
		fn(i - 1)
	}
	if x < p.size-1 {
		fn(i + 1)
	}
	if y > 0 {
		fn(i - p.size)
	}
	if y < p.size-1 {
		fn(i + p.size)
	}
}

// chain collects the connected stones of board[i]'s color and counts their
// liberties. The board argument lets callers probe hypothetical positions.
func chainAt(board []Color, size, i int) (stones []int, liberties int) {
	color := board[i]
	seen := make(map[int]bool)
	libs := make(map[int]bool)
	stack := []int{i}
	seen[i] = true
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		stones = append(stones, s)
		x, y := s%size, s/size
		for _, n := range [4]int{s - 1, s + 1, s - size, s + size} {
			switch {
			case n == s-1 && x == 0, n == s+1 && x == size-1,
				n == s-size && y == 0, n == s+size && y == size-1:
				continue
			}
			switch board[n] {
			case Empty:
				libs[n] = true
			case color:
				if !seen[n] {
					seen[n] = true
					stack = append(stack, n)
				}
			}
		}
	}
	return stones, len(libs)
}

// Legal reports whether the move could be played in the current position.
func (p *Position) Legal(m Move) bool {
	if m.IsPass() {
		return true
	}
	if m.IsResign() {
		return false
	}
	i := int(m)
	if i < 0 || i >= len(p.board) || p.board[i] != Empty || i == p.ko {
		return false
	}
	_, err := p.tryPlace(i)
	return err == nil
}

// tryPlace applies a stone of the side to move at point i on a scratch
// board and returns the resulting board, or an error if the move is
// suicide.
func (p *Position) tryPlace(i int) ([]Color, error) {
	board := append([]Color(nil), p.board...)
	board[i] = p.toPlay
	opponent := p.toPlay.Opponent()

	captured := 0
	p.eachNeighbor(i, func(n int) {
		if board[n] != opponent {
			return
		}
		stones, libs := chainAt(board, p.size, n)
		if libs == 0 {
			for _, s := range stones {
				board[s] = Empty
			}
			captured += len(stones)
		}
	})

	if _, libs := chainAt(board, p.size, i); libs == 0 {
		return nil, fmt.Errorf("suicide at %s", Move(i).GTP(p.size))
	}
	return board, nil
}

// Play applies a move for the side to move. Rejected moves leave the
// position unchanged.
func (p *Position) Play(m Move) error {
	if m.IsResign() {
		return fmt.Errorf("resignation is not a board move")
	}
	if m.IsPass() {
		p.ko = -1
		p.passes++
		p.moves++
		p.toPlay = p.toPlay.Opponent()
		return nil
	}
	i := int(m)
	if i < 0 || i >= len(p.board) {
		return fmt.Errorf("move %d out of range", i)
	}
	if p.board[i] != Empty {
		return fmt.Errorf("%s is occupied", m.GTP(p.size))
	}
	if i == p.ko {
		return fmt.Errorf("%s retakes the ko", m.GTP(p.size))
	}

	board, err := p.tryPlace(i)
	if err != nil {
		return err
	}

	// Simple ko: a single-stone capture by a single stone in atari forbids
	// the immediate recapture point.
	p.ko = -1
	removed := diffRemoved(p.board, board)
	if len(removed) == 1 {
		if stones, libs := chainAt(board, p.size, i); len(stones) == 1 && libs == 1 {
			p.ko = removed[0]
		}
	}

	p.board = board
	p.passes = 0
	p.moves++
	p.toPlay = p.toPlay.Opponent()
	return nil
}

func diffRemoved(before, after []Color) []int {
	var removed []int
	for i := range before {
		if before[i] != Empty && after[i] == Empty {
			removed = append(removed, i)
		}
	}
	return removed
}

// Score returns the area score, positive when Black is ahead. Empty regions
// touching a single color count as that color's territory; regions touching
// both count for neither.
func (p *Position) Score() float64 {
	seen := make([]bool, len(p.board))
	black, white := 0, 0
	for i, c := range p.board {
		switch c {
		case Black:
			black++
		case White:
			white++
		case Empty:
			if seen[i] {
				continue
			}
			region, touches := p.emptyRegion(i, seen)
			switch {
			case touches[Black] && !touches[White]:
				black += len(region)
			case touches[White] && !touches[Black]:
				white += len(region)
			}
		}
	}
	return float64(black) - float64(white) - p.komi
}

func (p *Position) emptyRegion(start int, seen []bool) (region []int, touches map[Color]bool) {
	touches = map[Color]bool{}
	stack := []int{start}
	seen[start] = true
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		region = append(region, s)
		p.eachNeighbor(s, func(n int) {
			switch p.board[n] {
			case Empty:
				if !seen[n] {
					seen[n] = true
					stack = append(stack, n)
				}
			default:
				touches[p.board[n]] = true
			}
		})
	}
	return region, touches
}

// Features encodes the position as inference input planes: side-to-move
// stones, opponent stones, and a side-to-move indicator plane.
func (p *Position) Features() []float32 {
	n := len(p.board)
	planes := make([]float32, 3*n)
	opponent := p.toPlay.Opponent()
	tm := float32(0)
	if p.toPlay == Black {
		tm = 1
	}
	for i, c := range p.board {
		switch c {
		case p.toPlay:
			planes[i] = 1
		case opponent:
			planes[n+i] = 1
		}
		planes[2*n+i] = tm
	}
	return planes
}
