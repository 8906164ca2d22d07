package design

import (
	"fmt"
	"slices"
	"strings"

	"storefront/internal/domain"
)

// TextPatch changes the non-nil fields of the text layer.
type TextPatch struct {
	Content       *string     `json:"text,omitempty"`
	FontFamily    *string     `json:"fontFamily,omitempty"`
	FontSize      *float64    `json:"fontSize,omitempty"`
	FontWeight    *string     `json:"fontWeight,omitempty"`
	FontStyle     *string     `json:"fontStyle,omitempty"`
	Color         *string     `json:"fontColor,omitempty"`
	Gradient      *Gradient   `json:"gradient,omitempty"`
	Stroke        *Stroke     `json:"textStroke,omitempty"`
	Shadow        *Shadow     `json:"textShadow,omitempty"`
	Position      *Point      `json:"position,omitempty"`
	Rotation      *float64    `json:"rotation,omitempty"`
	Scale         *float64    `json:"scale,omitempty"`
	Opacity       *float64    `json:"opacity,omitempty"`
	Align         *Align      `json:"textAlign,omitempty"`
	LetterSpacing *float64    `json:"letterSpacing,omitempty"`
	LineHeight    *float64    `json:"lineHeight,omitempty"`
	Decoration    *Decoration `json:"textDecoration,omitempty"`
}

func (p TextPatch) apply(t TextLayer) TextLayer {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	num := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	set(&t.Content, p.Content)
	set(&t.FontFamily, p.FontFamily)
	set(&t.FontWeight, p.FontWeight)
	set(&t.FontStyle, p.FontStyle)
	set(&t.Color, p.Color)
	num(&t.FontSize, p.FontSize)
	num(&t.Rotation, p.Rotation)
	num(&t.Scale, p.Scale)
	num(&t.Opacity, p.Opacity)
	num(&t.LetterSpacing, p.LetterSpacing)
	num(&t.LineHeight, p.LineHeight)
	if p.Gradient != nil {
		t.Gradient = *p.Gradient
		t.Gradient.Colors = slices.Clone(p.Gradient.Colors)
	}
	if p.Stroke != nil {
		t.Stroke = *p.Stroke
	}
	if p.Shadow != nil {
		t.Shadow = *p.Shadow
	}
	if p.Position != nil {
		t.Position = *p.Position
	}
	if p.Align != nil {
		t.Align = *p.Align
	}
	if p.Decoration != nil {
		t.Decoration = *p.Decoration
	}
	return t
}

func validateText(t TextLayer) error {
	invalid := func(field, format string, args ...any) error {
		return domain.NewValidationError(field, fmt.Sprintf(format, args...))
	}
	switch {
	case strings.TrimSpace(t.FontFamily) == "":
		return invalid("fontFamily", "font family is required")
	case t.FontSize <= 0 || t.FontSize > 500:
		return invalid("fontSize", "font size must be between 0 and 500")
	case t.FontWeight != "bold" && t.FontWeight != "normal":
		return invalid("fontWeight", "unknown weight %q", t.FontWeight)
	case t.FontStyle != "italic" && t.FontStyle != "normal":
		return invalid("fontStyle", "unknown style %q", t.FontStyle)
	case !validColor(t.Color):
		return invalid("fontColor", "invalid color %q", t.Color)
	case t.Scale <= 0:
		return invalid("scale", "scale must be positive")
	case t.Opacity < 0 || t.Opacity > 1:
		return invalid("opacity", "opacity must be between 0 and 1")
	case t.Stroke.Width < 0:
		return invalid("textStroke", "stroke width must not be negative")
	case !validColor(t.Stroke.Color):
		return invalid("textStroke", "invalid color %q", t.Stroke.Color)
	case t.Shadow.Blur < 0:
		return invalid("textShadow", "blur must not be negative")
	case !validColor(t.Shadow.Color):
		return invalid("textShadow", "invalid color %q", t.Shadow.Color)
	case t.LineHeight <= 0:
		return invalid("lineHeight", "line height must be positive")
	}
	switch t.Align {
	case AlignLeft, AlignCenter, AlignRight:
	default:
		return invalid("textAlign", "unknown alignment %q", t.Align)
	}
	switch t.Decoration {
	case DecorationNone, DecorationUnderline, DecorationStrikethrough, DecorationOverline:
	default:
		return invalid("textDecoration", "unknown decoration %q", t.Decoration)
	}
	if t.Gradient.Enabled {
		if len(t.Gradient.Colors) < 2 {
			return invalid("gradient", "a gradient needs at least two colors")
		}
		for _, c := range t.Gradient.Colors {
			if !validColor(c) {
				return invalid("gradient", "invalid color %q", c)
			}
		}
	}
	return nil
}
