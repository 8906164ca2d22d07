package render

import (
	"fmt"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"storefront/internal/design"
)

// Families the picker offers are mapped onto the Go fonts: monospace
// families to Go Mono, everything else to Go.
var monospace = map[string]bool{
	"courier new":    true,
	"consolas":       true,
	"lucida console": true,
	"monaco":         true,
}

type faceKey struct {
	mono, bold, italic bool
}

var (
	fontsOnce sync.Once
	fontsErr  error
	parsed    map[faceKey]*opentype.Font
)

func loadFonts() error {
	fontsOnce.Do(func() {
		sources := map[faceKey][]byte{
			{false, false, false}: goregular.TTF,
			{false, true, false}:  gobold.TTF,
			{false, false, true}:  goitalic.TTF,
			{false, true, true}:   gobolditalic.TTF,
			{true, false, false}:  gomono.TTF,
			{true, true, false}:   gomonobold.TTF,
			{true, false, true}:   gomonoitalic.TTF,
			{true, true, true}:    gomonobolditalic.TTF,
		}
		parsed = make(map[faceKey]*opentype.Font, len(sources))
		for k, ttf := range sources {
			f, err := opentype.Parse(ttf)
			if err != nil {
				fontsErr = fmt.Errorf("parse builtin font: %w", err)
				return
			}
			parsed[k] = f
		}
	})
	return fontsErr
}

// newFace returns a face for t at size px. Faces are not shared between
// goroutines; each render creates its own.
func newFace(t design.TextLayer, size float64) (font.Face, error) {
	if err := loadFonts(); err != nil {
		return nil, err
	}
	key := faceKey{
		mono:   monospace[strings.ToLower(t.FontFamily)],
		bold:   t.Bold(),
		italic: t.Italic(),
	}
	face, err := opentype.NewFace(parsed[key], &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("new face %s %.0fpx: %w", t.FontFamily, size, err)
	}
	return face, nil
}

// Measurer measures text with the same faces Export draws with.
type Measurer struct{}

func (Measurer) MeasureText(t design.TextLayer) float64 {
	face, err := newFace(t, t.FontSize)
	if err != nil {
		return 0
	}
	defer face.Close()
	return textWidth(face, t.Content, t.LetterSpacing)
}

func textWidth(face font.Face, s string, spacing float64) float64 {
	w := fixedToFloat(font.MeasureString(face, s))
	if n := len([]rune(s)); n > 1 {
		w += float64(n-1) * spacing
	}
	return w
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
