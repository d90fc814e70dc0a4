package grid_test

import (
	"testing"

	"github.com/KirkDiggler/dnd-tactics/internal/domain/grid"
	"github.com/stretchr/testify/assert"
)

func TestCoverBetween(t *testing.T) {
	tests := []struct {
		name     string
		cells    []grid.Cell
		occupied []grid.Position
		from, to grid.Position
		want     grid.Cover
	}{
		{
			name: "clear line",
			from: pos(0, 0), to: pos(4, 0),
			want: grid.CoverNone,
		},
		{
			name:  "adjacent never has cover",
			cells: []grid.Cell{{Position: pos(1, 0), Terrain: grid.TerrainWall}},
			from:  pos(0, 0), to: pos(1, 1),
			want: grid.CoverNone,
		},
		{
			name:     "creature in the way",
			occupied: []grid.Position{pos(2, 0)},
			from:     pos(0, 0), to: pos(4, 0),
			want: grid.CoverHalf,
		},
		{
			name:  "low wall",
			cells: []grid.Cell{{Position: pos(2, 0), Terrain: grid.TerrainLowWall}},
			from:  pos(0, 0), to: pos(4, 0),
			want: grid.CoverThreeQuarters,
		},
		{
			name:     "wall beats everything",
			cells:    []grid.Cell{{Position: pos(3, 0), Terrain: grid.TerrainWall}},
			occupied: []grid.Position{pos(1, 0)},
			from:     pos(0, 0), to: pos(4, 0),
			want: grid.CoverTotal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := grid.New(10, 10)
			for _, c := range tt.cells {
				g.SetCell(c)
			}
			occupied := func(p grid.Position) bool {
				for _, o := range tt.occupied {
					if o == p {
						return true
					}
				}
				return false
			}
			assert.Equal(t, tt.want, g.CoverBetween(tt.from, tt.to, occupied))
		})
	}
}

func TestCover_ACBonus(t *testing.T) {
	assert.Equal(t, 0, grid.CoverNone.ACBonus())
	assert.Equal(t, 2, grid.CoverHalf.ACBonus())
	assert.Equal(t, 5, grid.CoverThreeQuarters.ACBonus())
	assert.Equal(t, 0, grid.CoverTotal.ACBonus())
	assert.Equal(t, "three-quarters", grid.CoverThreeQuarters.String())
}
