// Package systems provides the leaf systems of the flow-field simulation:
// noise, force fields, particle storage and spatial indexing.
package systems

import "math"

// Neighbor holds a nearby particle with precomputed spatial data.
type Neighbor struct {
	Index  int32
	DX, DY float32 // Toroidal delta from query origin
	DistSq float32 // Squared distance (avoid sqrt in hot path)
}

// SpatialGrid provides O(1) neighbor lookups using a cell-based grid over
// particle indices. It is rebuilt from the previous frame's buffer and read
// concurrently during the physics step.
type SpatialGrid struct {
	cellSize float32
	cols     int
	rows     int
	width    float32
	height   float32
	cells    [][]int32 // flat grid of particle index lists
}

// NewSpatialGrid creates a spatial grid covering the given world size.
func NewSpatialGrid(width, height, cellSize float32) *SpatialGrid {
	g := &SpatialGrid{cellSize: cellSize}
	g.Resize(width, height)
	return g
}

// Resize re-dimensions the grid for new world bounds, dropping its contents.
func (g *SpatialGrid) Resize(width, height float32) {
	// Cells tile the world exactly so wrapped queries step from the last
	// column straight to the first.
	cols := max(int(math.Ceil(float64(width/g.cellSize))), 1)
	rows := max(int(math.Ceil(float64(height/g.cellSize))), 1)

	cells := make([][]int32, cols*rows)
	for i := range cells {
		cells[i] = make([]int32, 0, 8) // pre-allocate small capacity
	}

	g.cols = cols
	g.rows = rows
	g.width = width
	g.height = height
	g.cells = cells
}

// CellSize returns the grid cell size.
func (g *SpatialGrid) CellSize() float32 {
	return g.cellSize
}

// Clear removes all particles from the grid.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert adds a particle to the grid at the given position.
func (g *SpatialGrid) Insert(index int32, x, y float32) {
	idx := g.cellIndex(x, y)
	g.cells[idx] = append(g.cells[idx], index)
}

// Rebuild clears the grid and inserts the first n particles of buf.
func (g *SpatialGrid) Rebuild(buf *ParticleBuffer, n int) {
	g.Clear()
	for i := 0; i < n; i++ {
		g.Insert(int32(i), buf.X[i], buf.Y[i])
	}
}

// MaxQueryResults caps the number of neighbors returned by spatial queries.
// This prevents density spikes from causing unbounded work.
const MaxQueryResults = 64

// QueryRadiusInto finds particles within radius of (x, y) and appends them to
// dst (up to MaxQueryResults). Positions are read from buf.
func (g *SpatialGrid) QueryRadiusInto(dst []Neighbor, buf *ParticleBuffer, x, y, radius float32, exclude int32) []Neighbor {
	cellRadius := int(radius/g.cellSize) + 1

	centerCol := int(x / g.cellSize)
	centerRow := int(y / g.cellSize)

	radiusSq := radius * radius

	// Small worlds would otherwise visit a wrapped cell twice
	colSpan := min(2*cellRadius+1, g.cols)
	rowSpan := min(2*cellRadius+1, g.rows)

	for dc := 0; dc < colSpan; dc++ {
		for dr := 0; dr < rowSpan; dr++ {
			// Toroidal wrap
			col := ((centerCol-cellRadius+dc)%g.cols + g.cols) % g.cols
			row := ((centerRow-cellRadius+dr)%g.rows + g.rows) % g.rows
			idx := row*g.cols + col

			for _, p := range g.cells[idx] {
				if p == exclude {
					continue
				}

				dx, dy := ToroidalDelta(x, y, buf.X[p], buf.Y[p], g.width, g.height)
				distSq := dx*dx + dy*dy

				if distSq <= radiusSq {
					dst = append(dst, Neighbor{Index: p, DX: dx, DY: dy, DistSq: distSq})
					if len(dst) >= MaxQueryResults {
						return dst
					}
				}
			}
		}
	}

	return dst
}

// cellIndex returns the flat index for a world position.
func (g *SpatialGrid) cellIndex(x, y float32) int {
	col := int(x / g.cellSize)
	row := int(y / g.cellSize)

	// Clamp to valid range
	if col < 0 {
		col = 0
	} else if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	} else if row >= g.rows {
		row = g.rows - 1
	}

	return row*g.cols + col
}
