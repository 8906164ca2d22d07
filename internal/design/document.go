// Package design is the canvas editor: an immutable Document, a pure Reduce
// transition, linear histories and the pointer-gesture state machine.
package design

import "math"

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Dist is the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 {
	return math.Hypot(p.X-q.X, p.Y-q.Y)
}

type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

type Decoration string

const (
	DecorationNone          Decoration = "none"
	DecorationUnderline     Decoration = "underline"
	DecorationStrikethrough Decoration = "line-through"
	DecorationOverline      Decoration = "overline"
)

type Gradient struct {
	Enabled bool     `json:"enabled"`
	Colors  []string `json:"colors"`
	Angle   float64  `json:"angle"`
}

type Stroke struct {
	Width float64 `json:"width"`
	Color string  `json:"color"`
}

type Shadow struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Blur  float64 `json:"blur"`
	Color string  `json:"color"`
}

// TextLayer is the single styled text element of a design.
type TextLayer struct {
	Content       string     `json:"text"`
	FontFamily    string     `json:"fontFamily"`
	FontSize      float64    `json:"fontSize"`
	FontWeight    string     `json:"fontWeight"` // bold | normal
	FontStyle     string     `json:"fontStyle"`  // italic | normal
	Color         string     `json:"fontColor"`
	Gradient      Gradient   `json:"gradient"`
	Stroke        Stroke     `json:"textStroke"`
	Shadow        Shadow     `json:"textShadow"`
	Position      Point      `json:"position"`
	Rotation      float64    `json:"rotation"` // degrees
	Scale         float64    `json:"scale"`
	Opacity       float64    `json:"opacity"`
	Align         Align      `json:"textAlign"`
	LetterSpacing float64    `json:"letterSpacing"`
	LineHeight    float64    `json:"lineHeight"`
	Decoration    Decoration `json:"textDecoration"`
}

func (t TextLayer) Bold() bool   { return t.FontWeight == "bold" }
func (t TextLayer) Italic() bool { return t.FontStyle == "italic" }

type Cap string

const (
	CapRound  Cap = "round"
	CapSquare Cap = "square"
)

// Drawing is one committed freehand stroke.
type Drawing struct {
	ID     string  `json:"id"`
	Points []Point `json:"points"`
	Color  string  `json:"color"`
	Width  float64 `json:"size"`
	Cap    Cap     `json:"brushType"`
}

// Near reports whether any point of d lies strictly within radius of p.
func (d Drawing) Near(p Point, radius float64) bool {
	for _, q := range d.Points {
		if q.Dist(p) < radius {
			return true
		}
	}
	return false
}

// Document is the whole design. Values are never mutated in place: every
// transition returns a new Document with fresh slices where anything changed.
type Document struct {
	Text       TextLayer `json:"text"`
	Shapes     []Shape   `json:"shapes"`
	Drawings   []Drawing `json:"drawings"`
	Background string    `json:"backgroundColor"` // editor only, never exported
}

const (
	DefaultText       = "DESIGN YOUR TEXT"
	BackgroundNone    = "transparent"
	defaultFontFamily = "Impact"
)

// DefaultTextLayer is the text layer of a fresh design.
func DefaultTextLayer() TextLayer {
	return TextLayer{
		Content:    DefaultText,
		FontFamily: defaultFontFamily,
		FontSize:   64,
		FontWeight: "bold",
		FontStyle:  "normal",
		Color:      "#3b82f6",
		Gradient:   Gradient{Colors: []string{"#3b82f6", "#1d4ed8"}, Angle: 90},
		Stroke:     Stroke{Width: 0, Color: "#ffffff"},
		Shadow:     Shadow{X: 2, Y: 2, Blur: 4, Color: "#00000040"},
		Position:   Point{X: 300, Y: 250},
		Scale:      1,
		Opacity:    1,
		Align:      AlignCenter,
		LineHeight: 1.2,
		Decoration: DecorationNone,
	}
}

func DefaultDocument() Document {
	return Document{
		Text:       DefaultTextLayer(),
		Shapes:     []Shape{},
		Drawings:   []Drawing{},
		Background: BackgroundNone,
	}
}
