// Package grid models the square battle map an encounter is fought on:
// terrain, elevation, hazards, distance, cover, paths and area shapes.
// Distances are in feet; one cell is five feet.
package grid

import (
	"fmt"
	"slices"

	"github.com/KirkDiggler/dnd-tactics/internal/dice"
)

// CellSize is the width of one grid cell in feet
const CellSize = 5

// Position is a cell coordinate
type Position struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Add returns p shifted by dx, dy
func (p Position) Add(dx, dy int) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Terrain is the kind of ground in a cell
type Terrain string

const (
	TerrainOpen      Terrain = "open"
	TerrainDifficult Terrain = "difficult"
	TerrainWall      Terrain = "wall"
	TerrainLowWall   Terrain = "low_wall"
	TerrainPit       Terrain = "pit"
)

// Hazard is a damaging surface such as fire or acid
type Hazard struct {
	Name       string          `json:"name" yaml:"name"`
	Damage     dice.Expression `json:"damage" yaml:"damage"`
	DamageType string          `json:"damage_type" yaml:"damage_type"`
}

// Cell describes one non-default square. Cells not listed are open ground at
// elevation zero.
type Cell struct {
	Position  `yaml:",inline"`
	Terrain   Terrain `json:"terrain" yaml:"terrain"`
	Elevation int     `json:"elevation,omitempty" yaml:"elevation"`
	Depth     int     `json:"depth,omitempty" yaml:"depth"`
	Hazard    *Hazard `json:"hazard,omitempty" yaml:"hazard"`
}

// Grid is a bounded battle map. The zero value is unusable; use New.
type Grid struct {
	Width  int    `json:"width" yaml:"width"`
	Height int    `json:"height" yaml:"height"`
	Cells  []Cell `json:"cells,omitempty" yaml:"cells"`

	index map[Position]int
}

// New creates an open grid
func New(width, height int) *Grid {
	return &Grid{Width: width, Height: height}
}

// Bounding creates an open grid that covers every position plus margin cells
func Bounding(positions []Position, margin int) *Grid {
	maxX, maxY := 0, 0
	for _, p := range positions {
		maxX = max(maxX, p.X)
		maxY = max(maxY, p.Y)
	}
	return New(maxX+1+margin, maxY+1+margin)
}

// InBounds reports whether p lies on the map
func (g *Grid) InBounds(p Position) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < g.Width && p.Y < g.Height
}

func (g *Grid) lookup(p Position) (int, bool) {
	if g.index == nil || len(g.index) != len(g.Cells) {
		g.index = make(map[Position]int, len(g.Cells))
		for i, c := range g.Cells {
			g.index[c.Position] = i
		}
	}
	i, ok := g.index[p]
	return i, ok
}

// Cell returns the cell at p, defaulting to open ground
func (g *Grid) Cell(p Position) Cell {
	if i, ok := g.lookup(p); ok {
		return g.Cells[i]
	}
	return Cell{Position: p, Terrain: TerrainOpen}
}

// SetCell stores c, replacing any previous cell at the same position
func (g *Grid) SetCell(c Cell) {
	if c.Terrain == "" {
		c.Terrain = TerrainOpen
	}
	if i, ok := g.lookup(c.Position); ok {
		g.Cells[i] = c
		return
	}
	g.Cells = append(g.Cells, c)
	g.index[c.Position] = len(g.Cells) - 1
}

// Walkable reports whether a creature can stand in p
func (g *Grid) Walkable(p Position) bool {
	if !g.InBounds(p) {
		return false
	}
	switch g.Cell(p).Terrain {
	case TerrainWall, TerrainLowWall:
		return false
	}
	return true
}

// Clone returns a deep copy
func (g *Grid) Clone() *Grid {
	if g == nil {
		return nil
	}
	clone := &Grid{Width: g.Width, Height: g.Height, Cells: slices.Clone(g.Cells)}
	for i := range clone.Cells {
		if h := clone.Cells[i].Hazard; h != nil {
			copied := *h
			clone.Cells[i].Hazard = &copied
		}
	}
	return clone
}

// Distance is the Chebyshev distance between two cells in feet
func Distance(a, b Position) int {
	return max(abs(a.X-b.X), abs(a.Y-b.Y)) * CellSize
}

// ElevationModifier is the attack roll adjustment for attacking from a
// height difference of ten feet or more.
func (g *Grid) ElevationModifier(attacker, target Position) int {
	diff := g.Cell(attacker).Elevation - g.Cell(target).Elevation
	switch {
	case diff >= 10:
		return 2
	case diff <= -10:
		return -2
	}
	return 0
}

// LeavesReach reports whether moving from one cell to the next takes the
// mover out of a threatener's reach.
func LeavesReach(threat Position, reach int, from, to Position) bool {
	return Distance(threat, from) <= reach && Distance(threat, to) > reach
}

// PushDestination returns the cell reached by pushing target cells away
// from source along the line between them.
func PushDestination(source, target Position, cells int) Position {
	return target.Add(sign(target.X-source.X)*cells, sign(target.Y-source.Y)*cells)
}

// FallDamage is 1d6 per full ten feet fallen, capped at 20d6
func FallDamage(feet int) dice.Expression {
	count := min(feet/10, 20)
	if count <= 0 {
		return dice.Expression{}
	}
	return dice.Expression{Count: count, Sides: 6}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
