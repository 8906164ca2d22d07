package design

import "math"

type ShapeKind string

const (
	ShapeCircle ShapeKind = "circle"
	ShapeSquare ShapeKind = "square"
	ShapeLine   ShapeKind = "line"
)

// Minimum sizes below which a dragged shape is discarded.
const (
	minCircleRadius = 5
	minSquareSide   = 10
	minLineLength   = 10

	// lineHitTolerance is the perpendicular distance that still counts as a hit.
	lineHitTolerance = 10

	defaultBorderColor = "#3b82f6"
	defaultBorderWidth = 2
)

// Shape is a tagged variant: Center and Radius for circles, Center and Side
// for squares, From and To for lines.
type Shape struct {
	ID          string    `json:"id"`
	Kind        ShapeKind `json:"type"`
	Center      Point     `json:"center"`
	Radius      float64   `json:"radius,omitempty"`
	Side        float64   `json:"size,omitempty"`
	From        Point     `json:"from"`
	To          Point     `json:"to"`
	Fill        string    `json:"color"`
	Border      string    `json:"borderColor"`
	BorderWidth float64   `json:"borderWidth"`
	Filled      bool      `json:"fill"`
}

// NewShape starts a zero-size shape of kind anchored at p, styled with color.
func NewShape(kind ShapeKind, p Point, color string) Shape {
	s := Shape{Kind: kind, Fill: color, Border: defaultBorderColor, BorderWidth: defaultBorderWidth, Filled: true}
	switch kind {
	case ShapeLine:
		s.From, s.To = p, p
		s.Border = color
		s.Filled = false
	default:
		s.Center = p
	}
	return s
}

// SizeTo grows the shape from its anchor toward p: the radius is the distance,
// the square side is twice the larger axis offset, the line ends at p.
func (s Shape) SizeTo(p Point) Shape {
	switch s.Kind {
	case ShapeCircle:
		s.Radius = s.Center.Dist(p)
	case ShapeSquare:
		s.Side = math.Max(math.Abs(p.X-s.Center.X), math.Abs(p.Y-s.Center.Y)) * 2
	case ShapeLine:
		s.To = p
	}
	return s
}

// Valid reports whether the shape is large enough to keep.
func (s Shape) Valid() bool {
	switch s.Kind {
	case ShapeCircle:
		return s.Radius > minCircleRadius
	case ShapeSquare:
		return s.Side > minSquareSide
	case ShapeLine:
		return s.From.Dist(s.To) > minLineLength
	}
	return false
}

func (s Shape) Contains(p Point) bool {
	switch s.Kind {
	case ShapeCircle:
		dx, dy := p.X-s.Center.X, p.Y-s.Center.Y
		return dx*dx+dy*dy <= s.Radius*s.Radius
	case ShapeSquare:
		half := s.Side / 2
		return p.X >= s.Center.X-half && p.X <= s.Center.X+half &&
			p.Y >= s.Center.Y-half && p.Y <= s.Center.Y+half
	case ShapeLine:
		return distToSegment(p, s.From, s.To) < lineHitTolerance
	}
	return false
}

func (s Shape) Translate(d Point) Shape {
	switch s.Kind {
	case ShapeLine:
		s.From = s.From.Add(d)
		s.To = s.To.Add(d)
	default:
		s.Center = s.Center.Add(d)
	}
	return s
}

// Bounds is the axis-aligned box (min, max) around the shape.
func (s Shape) Bounds() (Point, Point) {
	switch s.Kind {
	case ShapeCircle:
		return Point{s.Center.X - s.Radius, s.Center.Y - s.Radius}, Point{s.Center.X + s.Radius, s.Center.Y + s.Radius}
	case ShapeSquare:
		half := s.Side / 2
		return Point{s.Center.X - half, s.Center.Y - half}, Point{s.Center.X + half, s.Center.Y + half}
	}
	return Point{math.Min(s.From.X, s.To.X), math.Min(s.From.Y, s.To.Y)},
		Point{math.Max(s.From.X, s.To.X), math.Max(s.From.Y, s.To.Y)}
}

func distToSegment(p, a, b Point) float64 {
	c, d := b.X-a.X, b.Y-a.Y
	lenSq := c*c + d*d
	t := -1.0
	if lenSq != 0 {
		t = ((p.X-a.X)*c + (p.Y-a.Y)*d) / lenSq
	}
	switch {
	case t < 0:
		return p.Dist(a)
	case t > 1:
		return p.Dist(b)
	}
	return p.Dist(Point{a.X + t*c, a.Y + t*d})
}

// HitShape returns the index of the topmost shape containing p, or -1.
func HitShape(shapes []Shape, p Point) int {
	for i := len(shapes) - 1; i >= 0; i-- {
		if shapes[i].Contains(p) {
			return i
		}
	}
	return -1
}
