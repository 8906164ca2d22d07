package design

import "unicode/utf8"

// TextMeasurer reports the unscaled advance width of the text layer's content.
type TextMeasurer interface {
	MeasureText(t TextLayer) float64
}

// approxMeasurer assumes an average glyph width of 0.6em.
type approxMeasurer struct{}

func (approxMeasurer) MeasureText(t TextLayer) float64 {
	n := utf8.RuneCountInString(t.Content)
	w := float64(n) * t.FontSize * 0.6
	if n > 1 {
		w += float64(n-1) * t.LetterSpacing
	}
	return w
}

// TextBounds is the text hit box: measured width by font size, both scaled,
// centered on the text position.
func TextBounds(t TextLayer, m TextMeasurer) (Point, Point) {
	if m == nil {
		m = approxMeasurer{}
	}
	w := m.MeasureText(t) * t.Scale
	h := t.FontSize * t.Scale
	return Point{t.Position.X - w/2, t.Position.Y - h/2}, Point{t.Position.X + w/2, t.Position.Y + h/2}
}

func textHit(t TextLayer, m TextMeasurer, p Point) bool {
	lo, hi := TextBounds(t, m)
	return p.X >= lo.X && p.X <= hi.X && p.Y >= lo.Y && p.Y <= hi.Y
}
