package design

import "slices"

var fonts = []string{
	"Impact", "Arial Black", "Helvetica", "Times New Roman", "Courier New",
	"Georgia", "Verdana", "Comic Sans MS", "Trebuchet MS", "Palatino",
	"Garamond", "Bookman", "Baskerville", "Calibri", "Cambria",
	"Century Gothic", "Consolas", "Futura", "Gill Sans", "Lucida Console",
	"Monaco", "Optima", "Segoe UI", "Tahoma", "Roboto",
	"Open Sans", "Lato", "Montserrat", "Oswald", "Raleway",
	"Playfair Display", "Merriweather", "Dancing Script", "Pacifico", "Caveat",
	"Great Vibes", "Satisfy",
}

// Fonts lists the families offered in the font picker.
func Fonts() []string { return slices.Clone(fonts) }

type GradientPreset struct {
	Name   string   `json:"name"`
	Colors []string `json:"colors"`
}

var gradientPresets = []GradientPreset{
	{Name: "Blue Ocean", Colors: []string{"#3b82f6", "#1d4ed8"}},
	{Name: "Deep Blue", Colors: []string{"#1e40af", "#0c4a6e"}},
	{Name: "Blue Gray", Colors: []string{"#4b5563", "#1f2937"}},
	{Name: "Electric", Colors: []string{"#3b82f6", "#8b5cf6"}},
	{Name: "Sky", Colors: []string{"#0ea5e9", "#3b82f6"}},
	{Name: "Steel", Colors: []string{"#94a3b8", "#475569"}},
	{Name: "Midnight", Colors: []string{"#1e3a8a", "#000000"}},
	{Name: "Azure", Colors: []string{"#1d4ed8", "#06b6d4"}},
}

func GradientPresets() []GradientPreset {
	out := make([]GradientPreset, len(gradientPresets))
	for i, p := range gradientPresets {
		out[i] = GradientPreset{Name: p.Name, Colors: slices.Clone(p.Colors)}
	}
	return out
}

func findPreset(name string) (GradientPreset, bool) {
	for _, p := range gradientPresets {
		if p.Name == name {
			return p, true
		}
	}
	return GradientPreset{}, false
}

// Palette is the quick color swatch row.
func Palette() []string {
	return []string{"#3b82f6", "#1d4ed8", "#4b5563", "#1f2937", "#000000", "#ffffff",
		"#ef4444", "#10b981", "#f59e0b", "#8b5cf6", "#ec4899", "#06b6d4"}
}

// Backgrounds are the editor background choices besides transparent.
func Backgrounds() []string {
	return []string{"#1f2937", "#111827", "#000000", "#374151"}
}
