package annotation

import "math"

func signedArea(pts []Point) float64 {
	var sum float64
	n := len(pts)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return sum / 2
}

// PolygonArea is the shoelace area of the closed polygon. ok is false for
// fewer than 3 vertices.
func PolygonArea(pts []Point) (area float64, ok bool) {
	if len(pts) < 3 {
		return 0, false
	}
	return math.Abs(signedArea(pts)), true
}

// PolygonCentroid is the area-weighted centroid. ok is false for fewer than
// 3 vertices or a zero-area polygon.
func PolygonCentroid(pts []Point) (Point, bool) {
	if len(pts) < 3 {
		return Point{}, false
	}
	a := signedArea(pts)
	if a == 0 {
		return Point{}, false
	}
	var cx, cy float64
	n := len(pts)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		cross := pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
		cx += (pts[i].X + pts[j].X) * cross
		cy += (pts[i].Y + pts[j].Y) * cross
	}
	return Point{X: cx / (6 * a), Y: cy / (6 * a)}, true
}

// Extent returns the width and height of the axis-aligned box around pts.
func Extent(pts []Point) (width, height float64, ok bool) {
	if len(pts) == 0 {
		return 0, 0, false
	}
	minX, maxX := pts[0].X, pts[0].X
	minY, maxY := pts[0].Y, pts[0].Y
	for _, p := range pts[1:] {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}
	return maxX - minX, maxY - minY, true
}

// PolylineLength sums the Euclidean lengths of consecutive segments.
func PolylineLength(pts []Point) float64 {
	var total float64
	for i := 1; i < len(pts); i++ {
		total += math.Hypot(pts[i].X-pts[i-1].X, pts[i].Y-pts[i-1].Y)
	}
	return total
}

// MeanPoint is the arithmetic mean of the vertices, not the midpoint along
// the path.
func MeanPoint(pts []Point) (Point, bool) {
	if len(pts) == 0 {
		return Point{}, false
	}
	var sx, sy float64
	for _, p := range pts {
		sx += p.X
		sy += p.Y
	}
	n := float64(len(pts))
	return Point{X: sx / n, Y: sy / n}, true
}

// Seconds converts the millisecond bounds of r. The duration is not clamped,
// so an inverted range yields a negative duration.
func (r Range) Seconds() (begin, end, duration float64) {
	begin = r.Begin / 1000
	end = r.End / 1000
	return begin, end, end - begin
}

func (s CuboidShape) Volume() float64 {
	return s.Dimensions.Width * s.Dimensions.Height * s.Dimensions.Depth
}

func (s CuboidShape) FootprintArea() float64 {
	return s.Dimensions.Width * s.Dimensions.Depth
}

// ZBounds returns the bottom and top z of the cuboid. Rotation is not
// considered.
func (s CuboidShape) ZBounds() (bottom, top float64) {
	half := s.Dimensions.Height / 2
	return s.Location.Z - half, s.Location.Z + half
}
