package render

import (
	"image"

	"github.com/fogleman/gg"

	"storefront/internal/design"
)

const (
	previewFill  = "#1f2937"
	gridColor    = "#374151"
	gridSpacing  = 20
	selectColor  = "#f59e0b"
	eraserColor  = "#ffffff"
	draftOpacity = 0x80
)

// Overlay is the transient editor state drawn over a preview.
type Overlay struct {
	Selected    int
	Draft       *design.Shape
	Stroke      []design.Point
	StrokeColor string
	StrokeWidth float64
	StrokeCap   design.Cap
	Erasing     bool
}

// OverlayFrom picks the overlay out of an editor view.
func OverlayFrom(v design.View) Overlay {
	return Overlay{
		Selected:    v.Selected,
		Draft:       v.Draft,
		Stroke:      v.Stroke,
		StrokeColor: v.Props.Color,
		StrokeWidth: v.Props.Size,
		StrokeCap:   v.Props.Cap,
		Erasing:     v.Tool == design.ToolEraser,
	}
}

// Preview renders what the editor canvas shows: the background (or the dark
// grid when transparent), shapes with the selection outline, the shape being
// sized, drawings, the stroke in progress, then the text.
func Preview(doc design.Document, width, height int, o Overlay) (image.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrEmptyCanvas
	}
	dc := gg.NewContext(width, height)
	drawBackground(dc, doc.Background)

	for i, s := range doc.Shapes {
		drawShape(dc, s)
		if i == o.Selected {
			drawSelection(dc, s)
		}
	}
	if o.Draft != nil {
		d := *o.Draft
		fill := design.MustColor(d.Fill)
		fill.A = draftOpacity
		shapePath(dc, d)
		if d.Kind != design.ShapeLine {
			dc.SetColor(fill)
			dc.FillPreserve()
		}
		dc.SetColor(design.MustColor(d.Border))
		dc.SetLineWidth(d.BorderWidth)
		dc.Stroke()
	}
	drawDrawings(dc, doc.Drawings)

	if len(o.Stroke) > 1 {
		c := o.StrokeColor
		if o.Erasing {
			c = eraserColor
		}
		strokePath(dc, o.Stroke, design.MustColor(c), o.StrokeWidth, o.StrokeCap)
	}
	if err := drawText(dc, doc.Text); err != nil {
		return nil, err
	}
	return dc.Image(), nil
}

func drawBackground(dc *gg.Context, background string) {
	w, h := float64(dc.Width()), float64(dc.Height())
	if background != "" && background != design.BackgroundNone {
		dc.SetColor(design.MustColor(background))
		dc.DrawRectangle(0, 0, w, h)
		dc.Fill()
		return
	}
	dc.SetColor(design.MustColor(previewFill))
	dc.DrawRectangle(0, 0, w, h)
	dc.Fill()

	dc.SetColor(design.MustColor(gridColor))
	dc.SetLineWidth(1)
	for x := 0.0; x <= w; x += gridSpacing {
		dc.DrawLine(x, 0, x, h)
	}
	for y := 0.0; y <= h; y += gridSpacing {
		dc.DrawLine(0, y, w, y)
	}
	dc.Stroke()
}

func drawSelection(dc *gg.Context, s design.Shape) {
	lo, hi := s.Bounds()
	const pad = 4
	dc.SetColor(design.MustColor(selectColor))
	dc.SetLineWidth(1)
	dc.SetDash(5, 5)
	dc.DrawRectangle(lo.X-pad, lo.Y-pad, hi.X-lo.X+2*pad, hi.Y-lo.Y+2*pad)
	dc.Stroke()
	dc.SetDash()
}
