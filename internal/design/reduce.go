package design

import "slices"

// Action is a document transition understood by Reduce.
type Action interface{ isAction() }

type (
	SetText     struct{ Text TextLayer }
	MoveText    struct{ To Point }
	AddShape    struct{ Shape Shape }
	MoveShape   struct {
		Index int
		By    Point
	}
	DeleteShape struct{ Index int }
	AddDrawing  struct{ Drawing Drawing }
	// EraseAt removes every drawing with a point strictly within Radius of At.
	EraseAt struct {
		At     Point
		Radius float64
	}
	SetDrawings struct{ Drawings []Drawing }
	// Restore replaces the text layer and shapes, as stored in the text+shape history.
	Restore struct {
		Text       TextLayer
		Shapes     []Shape
		Background string
	}
	SetBackground struct{ Color string }
	Clear         struct{}
)

func (SetText) isAction()       {}
func (MoveText) isAction()      {}
func (AddShape) isAction()      {}
func (MoveShape) isAction()     {}
func (DeleteShape) isAction()   {}
func (AddDrawing) isAction()    {}
func (EraseAt) isAction()       {}
func (SetDrawings) isAction()   {}
func (Restore) isAction()       {}
func (SetBackground) isAction() {}
func (Clear) isAction()         {}

// Reduce applies a to doc and returns the new document. doc is not modified.
// Out-of-range indexes leave the document unchanged.
func Reduce(doc Document, a Action) Document {
	switch a := a.(type) {
	case SetText:
		doc.Text = a.Text
		doc.Text.Gradient.Colors = slices.Clone(a.Text.Gradient.Colors)
	case MoveText:
		doc.Text.Position = a.To
	case AddShape:
		doc.Shapes = append(slices.Clip(doc.Shapes), a.Shape)
	case MoveShape:
		if a.Index < 0 || a.Index >= len(doc.Shapes) {
			return doc
		}
		doc.Shapes = slices.Clone(doc.Shapes)
		doc.Shapes[a.Index] = doc.Shapes[a.Index].Translate(a.By)
	case DeleteShape:
		if a.Index < 0 || a.Index >= len(doc.Shapes) {
			return doc
		}
		doc.Shapes = slices.Delete(slices.Clone(doc.Shapes), a.Index, a.Index+1)
	case AddDrawing:
		doc.Drawings = append(slices.Clip(doc.Drawings), a.Drawing)
	case EraseAt:
		kept := make([]Drawing, 0, len(doc.Drawings))
		for _, d := range doc.Drawings {
			if !d.Near(a.At, a.Radius) {
				kept = append(kept, d)
			}
		}
		if len(kept) != len(doc.Drawings) {
			doc.Drawings = kept
		}
	case SetDrawings:
		doc.Drawings = slices.Clone(a.Drawings)
		if doc.Drawings == nil {
			doc.Drawings = []Drawing{}
		}
	case Restore:
		doc.Text = a.Text
		doc.Shapes = slices.Clone(a.Shapes)
		if doc.Shapes == nil {
			doc.Shapes = []Shape{}
		}
		if a.Background != "" {
			doc.Background = a.Background
		}
	case SetBackground:
		doc.Background = a.Color
	case Clear:
		return DefaultDocument()
	}
	return doc
}
