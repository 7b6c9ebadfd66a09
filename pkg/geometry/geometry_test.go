package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoundingBoxValidity(t *testing.T) {
	var b BoundingBox
	assert.False(t, b.Valid)
	assert.False(t, b.Contains(Pt(0, 0)))

	b.AddBox(BoundingBox{XMin: 1, XMax: 2})
	assert.False(t, b.Valid, "invalid boxes must not validate the target")

	b.AddPoint(Pt(1, -1))
	b.AddPoint(Pt(-2, 3))
	assert.True(t, b.Valid)
	assert.Equal(t, BoundingBox{XMin: -2, YMin: -1, XMax: 1, YMax: 3, Valid: true}, b)
	assert.InDelta(t, 3, b.Width(), 1e-12)
	assert.InDelta(t, 4, b.Height(), 1e-12)
	assert.Equal(t, Pt(-0.5, 1), b.Center())
}

func TestBoundingBoxExpandAndSnap(t *testing.T) {
	b := NewBoundingBox(Pt(-1.234, -0.5), Pt(1.234, 0.5)).Expand(0.25)
	s := b.SnapOutward(0.01)
	assert.InDelta(t, -1.49, s.XMin, 1e-9)
	assert.InDelta(t, 1.49, s.XMax, 1e-9)
	assert.InDelta(t, -0.75, s.YMin, 1e-9)
	assert.InDelta(t, 0.75, s.YMax, 1e-9)
}

func TestRotate(t *testing.T) {
	p := Pt(1, 0).RotateDeg(90)
	assert.InDelta(t, 0, p.X, 1e-12)
	assert.InDelta(t, 1, p.Y, 1e-12)

	q := Pt(2, 1).RotateAround(Pt(1, 1), 180)
	assert.InDelta(t, 0, q.X, 1e-12)
	assert.InDelta(t, 1, q.Y, 1e-12)
}

func TestIsBetween(t *testing.T) {
	tests := []struct {
		name string
		c    Point
		want bool
	}{
		{"inside", Pt(0.5, 0), true},
		{"endpoint", Pt(1, 0), false},
		{"outside", Pt(1.5, 0), false},
		{"off line", Pt(0.5, 0.1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsBetween(Pt(0, 0), Pt(1, 0), tt.c))
		})
	}
}

func TestDirection(t *testing.T) {
	assert.Equal(t, "v", Direction(Pt(0, 0), Pt(0, 5)))
	assert.Equal(t, "h", Direction(Pt(0, 0), Pt(5, 0)))
	assert.Equal(t, "1.000", Direction(Pt(0, 0), Pt(2, 2)))
	assert.Equal(t, Direction(Pt(0, 0), Pt(2, 2)), Direction(Pt(2, 2), Pt(0, 0)))
}

func TestArcCenter(t *testing.T) {
	c, ok := ArcCenter(Pt(1, 0), Pt(0, 1), Pt(-1, 0))
	assert.True(t, ok)
	assert.InDelta(t, 0, c.X, 1e-12)
	assert.InDelta(t, 0, c.Y, 1e-12)

	_, ok = ArcCenter(Pt(0, 0), Pt(1, 1), Pt(2, 2))
	assert.False(t, ok)
}

func TestUnits(t *testing.T) {
	assert.Equal(t, 100, MMToMil(2.54))
	assert.Equal(t, 50, MMToMil(1.27))
	assert.InDelta(t, 1.27, MilToMM(50), 1e-12)
	assert.True(t, OnGrid(1.23, 0.01))
	assert.False(t, OnGrid(1.235, 0.01))
	assert.InDelta(t, 1.24, MapToGrid(1.2351, 0.01), 1e-12)
	assert.False(t, math.IsNaN(MapToGrid(1, 0)))
}
