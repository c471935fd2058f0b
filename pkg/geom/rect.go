package geom

import "fmt"

// A Rect is a closed axis-aligned rectangle described by its centre and its
// extents, the half-width and half-height measured out from the centre.
// Invariant: Extents.X >= 0
// Invariant: Extents.Y >= 0
// The zeroed Rect is a zero area rectangle at the origin.
type Rect struct {
	Center  Vec2
	Extents Vec2
}

// Returns a new Rect centred at center with the given full width and height
func NewRect(center Vec2, width, height float64) Rect {
	if width < 0 || height < 0 {
		panic(fmt.Sprintf("Cannot create rect with negative size. width : %10.3f height : %10.3f", width, height))
	}
	return Rect{
		Center:  center,
		Extents: Vec2{width / 2, height / 2},
	}
}

// Returns a new Rect spanning from min to max
// min.X <= max.X
// min.Y <= max.Y
func RectOfCorners(min, max Vec2) Rect {
	if max.X < min.X || max.Y < min.Y {
		panic(fmt.Sprintf("Cannot create rect with inverted corners. min : %v max : %v", min, max))
	}
	return Rect{
		Center:  min.Add(max).Scale(0.5),
		Extents: max.Sub(min).Scale(0.5),
	}
}

// Returns the lowest (bottom-left) corner of r
func (r Rect) Min() Vec2 {
	return r.Center.Sub(r.Extents)
}

// Returns the highest (top-right) corner of r
func (r Rect) Max() Vec2 {
	return r.Center.Add(r.Extents)
}

// Returns the full width of r
func (r Rect) Width() float64 {
	return 2 * r.Extents.X
}

// Returns the full height of r
func (r Rect) Height() float64 {
	return 2 * r.Extents.Y
}

// Indicates whether r contains the point p.
// Points on the boundary are contained.
func (r Rect) ContainsPoint(p Vec2) bool {
	d := p.Sub(r.Center)
	return d.X >= -r.Extents.X && d.X <= r.Extents.X &&
		d.Y >= -r.Extents.Y && d.Y <= r.Extents.Y
}

// Indicates whether r fully contains the inner rectangle or.
// Both corners of or must lie inside r. A rectangle encapsulates itself.
func (r Rect) Encapsulates(or Rect) bool {
	return r.ContainsPoint(or.Min()) && r.ContainsPoint(or.Max())
}

// Indicates whether r and or intersect. Rectangles which share only an edge
// or a corner still overlap.
// Reflexive, symmetric, and *not* transitive
func (r Rect) Overlaps(or Rect) bool {
	d := or.Center.Sub(r.Center)
	if d.X < 0 {
		d.X = -d.X
	}
	if d.Y < 0 {
		d.Y = -d.Y
	}
	return d.X <= r.Extents.X+or.Extents.X && d.Y <= r.Extents.Y+or.Extents.Y
}

// Human readable (sort of) representation of r
func (r Rect) String() string {
	return "[" + r.Min().String() + " " + r.Max().String() + "]"
}
