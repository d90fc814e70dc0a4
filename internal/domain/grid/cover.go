package grid

// Cover is the degree of obstruction between an attacker and a target
type Cover int

const (
	CoverNone Cover = iota
	CoverHalf
	CoverThreeQuarters
	CoverTotal
)

// ACBonus is the armor class bonus the cover grants. Total cover cannot be
// targeted at all and reports zero.
func (c Cover) ACBonus() int {
	switch c {
	case CoverHalf:
		return 2
	case CoverThreeQuarters:
		return 5
	}
	return 0
}

func (c Cover) String() string {
	switch c {
	case CoverHalf:
		return "half"
	case CoverThreeQuarters:
		return "three-quarters"
	case CoverTotal:
		return "total"
	}
	return "none"
}

// CoverBetween walks the cells strictly between from and to. Walls block
// completely, low walls give three-quarters cover, and cells for which
// occupied returns true give half cover.
func (g *Grid) CoverBetween(from, to Position, occupied func(Position) bool) Cover {
	best := CoverNone
	for _, p := range line(from, to) {
		switch g.Cell(p).Terrain {
		case TerrainWall:
			return CoverTotal
		case TerrainLowWall:
			best = max(best, CoverThreeQuarters)
			continue
		}
		if occupied != nil && occupied(p) {
			best = max(best, CoverHalf)
		}
	}
	return best
}

// line returns the Bresenham cells between a and b, excluding both ends
func line(a, b Position) []Position {
	dx, dy := abs(b.X-a.X), -abs(b.Y-a.Y)
	sx, sy := sign(b.X-a.X), sign(b.Y-a.Y)
	err := dx + dy

	var cells []Position
	x, y := a.X, a.Y
	for {
		if x == b.X && y == b.Y {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
		if x == b.X && y == b.Y {
			break
		}
		cells = append(cells, Position{X: x, Y: y})
	}
	return cells
}
