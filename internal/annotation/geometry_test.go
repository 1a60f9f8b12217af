package annotation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pts(coords ...float64) []Point {
	out := make([]Point, 0, len(coords)/2)
	for i := 0; i+1 < len(coords); i += 2 {
		out = append(out, Point{X: coords[i], Y: coords[i+1]})
	}
	return out
}

func TestPolygonAreaCanonicalShapes(t *testing.T) {
	tests := []struct {
		name   string
		points []Point
		want   float64
	}{
		{name: "right triangle", points: pts(0, 0, 10, 0, 0, 10), want: 50},
		{name: "rectangle", points: pts(0, 0, 20, 0, 20, 10, 0, 10), want: 200},
		{name: "clockwise rectangle", points: pts(0, 0, 0, 10, 20, 10, 20, 0), want: 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			area, ok := PolygonArea(tt.points)
			require.True(t, ok)
			assert.InDelta(t, tt.want, area, 1e-9)
		})
	}
}

func TestPolygonAreaInvariantToRotation(t *testing.T) {
	base := pts(1, 1, 7, 2, 9, 6, 4, 9, 0, 5)
	want, ok := PolygonArea(base)
	require.True(t, ok)
	for shift := 1; shift < len(base); shift++ {
		rotated := append(append([]Point{}, base[shift:]...), base[:shift]...)
		got, ok := PolygonArea(rotated)
		require.True(t, ok)
		assert.InDelta(t, want, got, 1e-9, "shift=%d", shift)
	}
}

func TestPolygonDegenerate(t *testing.T) {
	_, ok := PolygonArea(pts(0, 0, 3, 4))
	assert.False(t, ok)
	_, ok = PolygonCentroid(pts(0, 0, 3, 4))
	assert.False(t, ok)
	_, ok = PolygonCentroid(pts(0, 0, 1, 1, 2, 2))
	assert.False(t, ok, "collinear points have no centroid")
}

func TestPolygonCentroid(t *testing.T) {
	c, ok := PolygonCentroid(pts(0, 0, 20, 0, 20, 10, 0, 10))
	require.True(t, ok)
	assert.InDelta(t, 10, c.X, 1e-9)
	assert.InDelta(t, 5, c.Y, 1e-9)

	c, ok = PolygonCentroid(pts(0, 0, 0, 9, 9, 0))
	require.True(t, ok)
	assert.InDelta(t, 3, c.X, 1e-9)
	assert.InDelta(t, 3, c.Y, 1e-9)
}

func TestPolylineHelpers(t *testing.T) {
	line := pts(0, 0, 10, 0, 10, 10, 20, 10)
	assert.InDelta(t, 30, PolylineLength(line), 1e-9)
	mid, ok := MeanPoint(line)
	require.True(t, ok)
	assert.Equal(t, Point{X: 10, Y: 5}, mid)
	w, h, ok := Extent(line)
	require.True(t, ok)
	assert.Equal(t, 20.0, w)
	assert.Equal(t, 10.0, h)

	_, ok = MeanPoint(nil)
	assert.False(t, ok)
	_, _, ok = Extent(nil)
	assert.False(t, ok)
}

func TestRangeSeconds(t *testing.T) {
	begin, end, duration := Range{Begin: 5000, End: 10000}.Seconds()
	assert.Equal(t, 5.0, begin)
	assert.Equal(t, 10.0, end)
	assert.Equal(t, 5.0, duration)

	_, _, duration = Range{Begin: 3000, End: 1000}.Seconds()
	assert.Equal(t, -2.0, duration)
}

func TestCuboidDerivedValues(t *testing.T) {
	s := CuboidShape{
		Dimensions: Size3{Width: 2, Height: 4, Depth: 3},
		Location:   Vector3{X: 1, Y: 1, Z: 10},
		Rotation:   Vector3{Z: 1.57},
	}
	assert.Equal(t, 24.0, s.Volume())
	assert.Equal(t, 6.0, s.FootprintArea())
	bottom, top := s.ZBounds()
	assert.Equal(t, 8.0, bottom)
	assert.Equal(t, 12.0, top)
}
