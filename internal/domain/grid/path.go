package grid

import "container/heap"

var neighbours = [8][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, 1}, {1, -1}, {-1, 1}, {-1, -1}}

// StepCost is the movement in feet needed to enter p
func (g *Grid) StepCost(p Position) int {
	if g.Cell(p).Terrain == TerrainDifficult {
		return CellSize * 2
	}
	return CellSize
}

// FindPath returns the cheapest route from one cell to another, excluding
// the start, and its cost in feet. Walls and pits are never entered. canPass,
// when set, vetoes intermediate cells; the destination is the caller's to
// validate.
func (g *Grid) FindPath(from, to Position, canPass func(Position) bool) ([]Position, int, bool) {
	if from == to {
		return nil, 0, true
	}
	if !g.Walkable(to) {
		return nil, 0, false
	}

	dist := map[Position]int{from: 0}
	prev := map[Position]Position{}
	open := &frontier{{pos: from}}

	for open.Len() > 0 {
		cur := heap.Pop(open).(node)
		if cur.cost > dist[cur.pos] {
			continue
		}
		if cur.pos == to {
			break
		}
		for _, n := range neighbours {
			next := cur.pos.Add(n[0], n[1])
			if !g.Walkable(next) || g.Cell(next).Terrain == TerrainPit {
				continue
			}
			if next != to && canPass != nil && !canPass(next) {
				continue
			}
			cost := cur.cost + g.StepCost(next)
			if known, seen := dist[next]; seen && known <= cost {
				continue
			}
			dist[next] = cost
			prev[next] = cur.pos
			heap.Push(open, node{pos: next, cost: cost})
		}
	}

	total, ok := dist[to]
	if !ok {
		return nil, 0, false
	}

	var path []Position
	for p := to; p != from; p = prev[p] {
		path = append(path, p)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, total, true
}

type node struct {
	pos  Position
	cost int
}

type frontier []node

func (f frontier) Len() int { return len(f) }
func (f frontier) Less(i, j int) bool {
	if f[i].cost != f[j].cost {
		return f[i].cost < f[j].cost
	}
	if f[i].pos.Y != f[j].pos.Y {
		return f[i].pos.Y < f[j].pos.Y
	}
	return f[i].pos.X < f[j].pos.X
}
func (f frontier) Swap(i, j int) { f[i], f[j] = f[j], f[i] }
func (f *frontier) Push(x any)   { *f = append(*f, x.(node)) }
func (f *frontier) Pop() any {
	old := *f
	n := old[len(old)-1]
	*f = old[:len(old)-1]
	return n
}
