// Package render rasterizes design documents: the transparent PNG export and
// the editor preview with its background, grid and in-progress overlays.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"

	"storefront/internal/design"
)

// DefaultProductName names exports made without a product.
const DefaultProductName = "plangex"

// gradientSpan is the half length of the text gradient axis in text space.
const gradientSpan = 100

var ErrEmptyCanvas = errors.New("render: canvas size must be positive")

// Export draws shapes, then drawings, then the text layer onto a transparent
// canvas. The editor background is never part of the export.
func Export(doc design.Document, width, height int) (image.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrEmptyCanvas
	}
	dc := gg.NewContext(width, height)
	drawShapes(dc, doc.Shapes)
	drawDrawings(dc, doc.Drawings)
	if err := drawText(dc, doc.Text); err != nil {
		return nil, err
	}
	return dc.Image(), nil
}

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Filename is <product>-design-<unix millis>.png with the product name slugged.
func Filename(product string, at time.Time) string {
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(product), "-"), "-")
	if slug == "" {
		slug = DefaultProductName
	}
	return fmt.Sprintf("%s-design-%d.png", slug, at.UnixMilli())
}

// ─────────────────────────────────────────────────────────────
// Shapes and drawings
// ─────────────────────────────────────────────────────────────

func shapePath(dc *gg.Context, s design.Shape) {
	switch s.Kind {
	case design.ShapeCircle:
		dc.DrawCircle(s.Center.X, s.Center.Y, s.Radius)
	case design.ShapeSquare:
		dc.DrawRectangle(s.Center.X-s.Side/2, s.Center.Y-s.Side/2, s.Side, s.Side)
	case design.ShapeLine:
		dc.DrawLine(s.From.X, s.From.Y, s.To.X, s.To.Y)
	}
}

func drawShape(dc *gg.Context, s design.Shape) {
	shapePath(dc, s)
	if s.Filled && s.Kind != design.ShapeLine {
		dc.SetColor(design.MustColor(s.Fill))
		dc.FillPreserve()
	}
	if s.BorderWidth > 0 {
		dc.SetColor(design.MustColor(s.Border))
		dc.SetLineWidth(s.BorderWidth)
		dc.SetLineCap(gg.LineCapButt)
		dc.StrokePreserve()
	}
	dc.ClearPath()
}

func drawShapes(dc *gg.Context, shapes []design.Shape) {
	for _, s := range shapes {
		drawShape(dc, s)
	}
}

func strokePath(dc *gg.Context, points []design.Point, c color.Color, width float64, brush design.Cap) {
	if len(points) < 2 {
		return
	}
	dc.SetColor(c)
	dc.SetLineWidth(width)
	dc.SetLineJoin(gg.LineJoinRound)
	if brush == design.CapSquare {
		dc.SetLineCap(gg.LineCapSquare)
	} else {
		dc.SetLineCap(gg.LineCapRound)
	}
	dc.MoveTo(points[0].X, points[0].Y)
	for _, p := range points[1:] {
		dc.LineTo(p.X, p.Y)
	}
	dc.Stroke()
}

func drawDrawings(dc *gg.Context, drawings []design.Drawing) {
	for _, d := range drawings {
		strokePath(dc, d.Points, design.MustColor(d.Color), d.Width, d.Cap)
	}
}

// ─────────────────────────────────────────────────────────────
// Text
// ─────────────────────────────────────────────────────────────

// drawText renders the text layer on its own layer, casts the shadow, and
// composites both onto dc at the layer opacity.
func drawText(dc *gg.Context, t design.TextLayer) error {
	if strings.TrimSpace(t.Content) == "" || t.FontSize <= 0 || t.Opacity <= 0 {
		return nil
	}
	face, err := newFace(t, t.FontSize)
	if err != nil {
		return err
	}
	defer face.Close()

	w, h := dc.Width(), dc.Height()
	layer := textLayer(w, h, t, face)

	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	if t.Shadow.X != 0 || t.Shadow.Y != 0 {
		shadow := castShadow(layer, t.Shadow)
		offset := image.Pt(int(math.Round(t.Shadow.X)), int(math.Round(t.Shadow.Y)))
		xdraw.Draw(out, out.Bounds(), shadow, out.Bounds().Min.Sub(offset), xdraw.Over)
	}
	xdraw.Draw(out, out.Bounds(), layer, image.Point{}, xdraw.Over)

	alpha := image.NewUniform(color.Alpha{A: uint8(math.Round(math.Min(t.Opacity, 1) * 255))})
	dst := dc.Image().(*image.RGBA)
	xdraw.DrawMask(dst, dst.Bounds(), out, image.Point{}, alpha, image.Point{}, xdraw.Over)
	return nil
}

// textContext returns a w by h context transformed into text space: origin at
// the text position, rotated, then scaled.
func textContext(w, h int, t design.TextLayer, face font.Face) *gg.Context {
	dc := gg.NewContext(w, h)
	dc.Translate(t.Position.X, t.Position.Y)
	dc.Rotate(gg.Radians(t.Rotation))
	if t.Scale > 0 {
		dc.Scale(t.Scale, t.Scale)
	}
	dc.SetFontFace(face)
	return dc
}

func textLayer(w, h int, t design.TextLayer, face font.Face) image.Image {
	dc := textContext(w, h, t, face)
	width := textWidth(face, t.Content, t.LetterSpacing)

	if t.Stroke.Width > 0 {
		dc.SetColor(design.MustColor(t.Stroke.Color))
		r := t.Stroke.Width / 2
		for i := 0; i < 16; i++ {
			a := float64(i) * math.Pi / 8
			drawString(dc, face, t, width, r*math.Cos(a), r*math.Sin(a))
		}
	}

	var grad gg.Gradient
	if t.Gradient.Enabled && len(t.Gradient.Colors) >= 2 {
		grad = textGradient(dc, t.Gradient)
		mask := textContext(w, h, t, face)
		mask.SetColor(color.White)
		drawString(mask, face, t, width, 0, 0)
		fill := gg.NewContext(w, h)
		if err := fill.SetMask(mask.AsMask()); err == nil {
			fill.SetFillStyle(grad)
			fill.DrawRectangle(0, 0, float64(w), float64(h))
			fill.Fill()
		}
		dc.DrawImage(fill.Image(), 0, 0)
	} else {
		dc.SetColor(design.MustColor(t.Color))
		drawString(dc, face, t, width, 0, 0)
	}

	if y, ok := decorationOffset(t); ok {
		if grad != nil {
			dc.SetStrokeStyle(grad)
		} else {
			dc.SetColor(design.MustColor(t.Color))
		}
		dc.SetLineWidth(2)
		dc.SetLineCap(gg.LineCapButt)
		dc.DrawLine(-width/2, y, width/2, y)
		dc.Stroke()
	}
	return dc.Image()
}

// anchorX is the horizontal anchor for the text alignment.
func anchorX(a design.Align) float64 {
	switch a {
	case design.AlignLeft:
		return 0
	case design.AlignRight:
		return 1
	}
	return 0.5
}

// drawString draws the content middle-aligned at (dx, dy) in text space,
// spacing runes individually when letter spacing is set.
func drawString(dc *gg.Context, face font.Face, t design.TextLayer, width, dx, dy float64) {
	ax := anchorX(t.Align)
	if t.LetterSpacing == 0 {
		dc.DrawStringAnchored(t.Content, dx, dy, ax, 0.5)
		return
	}
	x := dx - ax*width
	for _, r := range t.Content {
		s := string(r)
		dc.DrawStringAnchored(s, x, dy, 0, 0.5)
		x += fixedToFloat(font.MeasureString(face, s)) + t.LetterSpacing
	}
}

// textGradient maps the gradient axis, gradientSpan either side of the text
// origin, into device space. Colors are spread evenly along it.
func textGradient(dc *gg.Context, g design.Gradient) gg.Gradient {
	a := gg.Radians(g.Angle)
	ux, uy := math.Sin(a)*gradientSpan, -math.Cos(a)*gradientSpan
	x0, y0 := dc.TransformPoint(-ux, -uy)
	x1, y1 := dc.TransformPoint(ux, uy)
	grad := gg.NewLinearGradient(x0, y0, x1, y1)
	last := float64(len(g.Colors) - 1)
	for i, c := range g.Colors {
		grad.AddColorStop(float64(i)/last, design.MustColor(c))
	}
	return grad
}

// decorationOffset is the y of the decoration line relative to the text middle.
func decorationOffset(t design.TextLayer) (float64, bool) {
	switch t.Decoration {
	case design.DecorationUnderline:
		return t.FontSize/2 + 5, true
	case design.DecorationStrikethrough:
		return 0, true
	case design.DecorationOverline:
		return -t.FontSize/2 - 5, true
	}
	return 0, false
}

// castShadow tints the layer's coverage with the shadow color and blurs it.
func castShadow(layer image.Image, s design.Shadow) image.Image {
	c := design.MustColor(s.Color)
	b := layer.Bounds()
	shadow := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			_, _, _, a := layer.At(x, y).RGBA()
			if a == 0 {
				continue
			}
			shadow.SetNRGBA(x, y, color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(uint32(c.A) * (a >> 8) / 255)})
		}
	}
	if s.Blur > 0 {
		return imaging.Blur(shadow, s.Blur/2)
	}
	return shadow
}
