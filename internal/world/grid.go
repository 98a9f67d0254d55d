// SPDX-FileCopyrightText: 2021 Softbear, Inc.
// SPDX-License-Identifier: AGPL-3.0-or-later

package world

// gridDim is the fixed number of tiles along each axis; 100 tiles total.
const gridDim = 10
const gridTiles = gridDim * gridDim

type tile map[Id]struct{}

// SpatialGrid is a fixed 10x10 uniform grid over [-mapSize, +mapSize]^2,
// used to keep collision detection sub-quadratic. Cell indexing uses the
// absolute value of each coordinate, so it collapses all four quadrants
// into one. Positions in (-x,+y) and (+x,+y) can collide in the grid but
// not in world space. This is a known, preserved quirk, not a bug to fix.
type SpatialGrid struct {
	tiles [gridTiles]tile
	scale float64
}

// NewSpatialGrid builds a grid covering [-mapSize, +mapSize]^2.
func NewSpatialGrid(mapSize float64) *SpatialGrid {
	g := &SpatialGrid{scale: mapSize / gridDim}
	for i := range g.tiles {
		g.tiles[i] = make(tile)
	}
	return g
}

// index returns the cell index for coords, and whether coords are in
// range of the grid at all.
func (g *SpatialGrid) index(coords Vec2) (int, bool) {
	if g.scale <= 0 {
		return 0, false
	}
	x := int(abs(coords.X) / g.scale)
	y := int(abs(coords.Y) / g.scale)
	if x >= gridDim || y >= gridDim {
		return 0, false
	}
	return y*gridDim+x, true
}

// Cell returns the tile's id set for coords, or nil if coords are out of
// range of the grid.
func (g *SpatialGrid) Cell(coords Vec2) map[Id]struct{} {
	i, ok := g.index(coords)
	if !ok {
		return nil
	}
	return g.tiles[i]
}

// Add inserts id into the tile for coords. Returns true iff the tile did
// not previously contain id (i.e. the entity crossed a cell boundary).
// Out-of-range coords are a no-op returning false.
func (g *SpatialGrid) Add(coords Vec2, id Id) bool {
	cell := g.Cell(coords)
	if cell == nil {
		return false
	}
	if _, present := cell[id]; present {
		return false
	}
	cell[id] = struct{}{}
	return true
}

// Remove deletes id from the tile for coords. Silent no-op if absent or
// out of range.
func (g *SpatialGrid) Remove(coords Vec2, id Id) {
	cell := g.Cell(coords)
	if cell == nil {
		return
	}
	delete(cell, id)
}
