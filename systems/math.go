package systems

import "math"

// Clamp clamps a float64 value between min and max.
func Clamp(v, minVal, maxVal float64) float64 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// clampFloat clamps a float32 value between min and max.
func clampFloat(v, minVal, maxVal float32) float32 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// Wrap maps v into [0, size) with toroidal topology.
func Wrap(v, size float32) float32 {
	if v >= 0 && v < size {
		return v
	}
	v = float32(math.Mod(float64(v), float64(size)))
	if v < 0 {
		v += size
	}
	// -tiny + size rounds to size in float32
	if v >= size {
		v = 0
	}
	return v
}

// ToroidalDelta returns the shortest path delta from (x1,y1) to (x2,y2).
func ToroidalDelta(x1, y1, x2, y2, w, h float32) (dx, dy float32) {
	dx = x2 - x1
	dy = y2 - y1

	if dx > w/2 {
		dx -= w
	} else if dx < -w/2 {
		dx += w
	}
	if dy > h/2 {
		dy -= h
	} else if dy < -h/2 {
		dy += h
	}

	return dx, dy
}

// length returns the euclidean length of (x, y).
func length(x, y float32) float32 {
	return float32(math.Sqrt(float64(x*x + y*y)))
}
