package app

import (
	"encoding/base64"

	"storefront/internal/design"
	"storefront/internal/service"
)

// ============================================================
// Design canvas
// ============================================================

// DesignPresets lists the pickers of the designer toolbar.
type DesignPresets struct {
	Fonts       []string                `json:"fonts"`
	Gradients   []design.GradientPreset `json:"gradients"`
	Palette     []string                `json:"palette"`
	Backgrounds []string                `json:"backgrounds"`
}

func (a *App) GetDesignPresets() DesignPresets {
	return DesignPresets{
		Fonts:       design.Fonts(),
		Gradients:   design.GradientPresets(),
		Palette:     design.Palette(),
		Backgrounds: design.Backgrounds(),
	}
}

func (a *App) GetDesign() (design.View, error) {
	if err := a.ready(); err != nil {
		return design.View{}, err
	}
	return a.core.Design.View(), nil
}

// applyDesign runs fn against the editor and returns the new view.
func (a *App) applyDesign(fn func(*design.Editor) error) (design.View, error) {
	if err := a.ready(); err != nil {
		return design.View{}, err
	}
	return a.core.Design.Apply(a.ctx, fn)
}

func (a *App) DesignPointerDown(x, y float64) (design.View, error) {
	return a.applyDesign(func(e *design.Editor) error {
		e.PointerDown(design.Point{X: x, Y: y})
		return nil
	})
}

func (a *App) DesignPointerMove(x, y float64) (design.View, error) {
	return a.applyDesign(func(e *design.Editor) error {
		e.PointerMove(design.Point{X: x, Y: y})
		return nil
	})
}

func (a *App) DesignPointerUp() (design.View, error) {
	return a.applyDesign(func(e *design.Editor) error {
		e.PointerUp()
		return nil
	})
}

func (a *App) DesignPointerLeave() (design.View, error) {
	return a.applyDesign(func(e *design.Editor) error {
		e.PointerLeave()
		return nil
	})
}

func (a *App) SetDesignTool(tool string) (design.View, error) {
	return a.applyDesign(func(e *design.Editor) error { return e.SetTool(design.Tool(tool)) })
}

// SetBrush updates the drawing color, size and cap in one call. Empty or
// zero values are left unchanged.
func (a *App) SetBrush(color string, size float64, brush string) (design.View, error) {
	return a.applyDesign(func(e *design.Editor) error {
		if color != "" {
			if err := e.SetDrawingColor(color); err != nil {
				return err
			}
		}
		if size != 0 {
			if err := e.SetDrawingSize(size); err != nil {
				return err
			}
		}
		if brush != "" {
			return e.SetBrushCap(design.Cap(brush))
		}
		return nil
	})
}

func (a *App) UpdateDesignText(patch design.TextPatch) (design.View, error) {
	return a.applyDesign(func(e *design.Editor) error { return e.UpdateText(patch) })
}

func (a *App) ApplyGradientPreset(name string) (design.View, error) {
	return a.applyDesign(func(e *design.Editor) error { return e.ApplyGradientPreset(name) })
}

func (a *App) SetDesignBackground(color string) (design.View, error) {
	return a.applyDesign(func(e *design.Editor) error { return e.SetBackground(color) })
}

func (a *App) DeleteSelectedShape() (design.View, error) {
	return a.applyDesign(func(e *design.Editor) error { return e.DeleteSelected() })
}

// ResizeDesign follows the canvas element size.
func (a *App) ResizeDesign(width, height int) (design.View, error) {
	return a.applyDesign(func(e *design.Editor) error { return e.Resize(width, height) })
}

func (a *App) UndoDesign() (design.View, error) {
	return a.applyDesign(func(e *design.Editor) error {
		e.Undo()
		return nil
	})
}

func (a *App) RedoDesign() (design.View, error) {
	return a.applyDesign(func(e *design.Editor) error {
		e.Redo()
		return nil
	})
}

func (a *App) ClearDesign() (design.View, error) {
	return a.applyDesign(func(e *design.Editor) error {
		e.ClearAll()
		return nil
	})
}

// ExportDesign asks where to save and writes the transparent PNG there.
// A cancelled dialog returns an empty Export.
func (a *App) ExportDesign() (service.Export, error) {
	if err := a.ready(); err != nil {
		return service.Export{}, err
	}
	return a.core.Design.ExportToFile(a.ctx, "")
}

// DesignPreview is the editor canvas as a data URL.
func (a *App) DesignPreview() (string, error) {
	if err := a.ready(); err != nil {
		return "", err
	}
	data, err := a.core.Design.PreviewPNG()
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data), nil
}
