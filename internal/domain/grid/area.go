package grid

import (
	"math"
	"sort"
)

// Shape is the geometry of an area effect
type Shape string

const (
	ShapeSphere Shape = "sphere"
	ShapeCone   Shape = "cone"
	ShapeLine   Shape = "line"
)

// Area is an area of effect. Spheres are centered on Origin. Cones and lines
// start at Origin and extend toward Toward for Size feet.
type Area struct {
	Shape  Shape    `json:"shape"`
	Size   int      `json:"size"`
	Origin Position `json:"origin"`
	Toward Position `json:"toward"`
}

// Contains reports whether the cell p is inside the area
func (a Area) Contains(p Position) bool {
	switch a.Shape {
	case ShapeSphere:
		return Distance(a.Origin, p) <= a.Size
	case ShapeCone, ShapeLine:
		if p == a.Origin {
			return false
		}
		along, across, ok := a.project(p)
		if !ok || along <= 0 || along*CellSize > float64(a.Size)+1e-9 {
			return false
		}
		if a.Shape == ShapeLine {
			return across <= 0.5+1e-9
		}
		// A cone is as wide as it is long at any distance
		return across <= along/2+1e-9
	}
	return false
}

// project returns p's distance along the area's axis and away from it, in cells
func (a Area) project(p Position) (along, across float64, ok bool) {
	dx, dy := float64(a.Toward.X-a.Origin.X), float64(a.Toward.Y-a.Origin.Y)
	length := math.Hypot(dx, dy)
	if length == 0 {
		return 0, 0, false
	}
	vx, vy := float64(p.X-a.Origin.X), float64(p.Y-a.Origin.Y)
	along = (vx*dx + vy*dy) / length
	across = math.Abs(vx*dy-vy*dx) / length
	return along, across, true
}

// Within returns the ids whose positions fall inside the area, sorted
func Within(a Area, positions map[string]Position) []string {
	var ids []string
	for id, p := range positions {
		if a.Contains(p) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
