package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"storefront/internal/design"
)

func (s *Server) registerDesignTools() {
	// ── design_view ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("design_view",
		mcp.WithDescription("Show the current design document, active tool and undo state"),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{ReadOnlyHint: boolPtr(true)}),
	), s.handleDesignView)

	// ── design_set_text ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("design_set_text",
		mcp.WithDescription(`Edit the text layer. Pass "text" for a plain content change, or "patch" as a JSON object with any of: text, fontFamily, fontSize, fontWeight, fontStyle, fontColor, gradient {enabled, colors, angle}, textStroke {width, color}, textShadow {offsetX, offsetY, blur, color}, position {x, y}, rotation, scale, opacity, textAlign, letterSpacing, lineHeight, textDecoration`),
		mcp.WithString("text", mcp.Description("New text content")),
		mcp.WithString("patch", mcp.Description("JSON object of text properties to change")),
		mcp.WithString("gradientPreset", mcp.Description("Name of a gradient preset to apply")),
	), s.handleDesignSetText)

	// ── design_add_shape ───────────────────────────────
	s.mcp.AddTool(mcp.NewTool("design_add_shape",
		mcp.WithDescription("Add a circle, square or line spanning from (x1,y1) to (x2,y2) in canvas coordinates"),
		mcp.WithString("type", mcp.Description("Shape type"), mcp.Required(), mcp.Enum("circle", "square", "line")),
		mcp.WithNumber("x1", mcp.Description("Start X"), mcp.Required()),
		mcp.WithNumber("y1", mcp.Description("Start Y"), mcp.Required()),
		mcp.WithNumber("x2", mcp.Description("End X"), mcp.Required()),
		mcp.WithNumber("y2", mcp.Description("End Y"), mcp.Required()),
	), s.handleDesignAddShape)

	// ── design_draw_stroke ─────────────────────────────
	s.mcp.AddTool(mcp.NewTool("design_draw_stroke",
		mcp.WithDescription(`Draw a freehand stroke through the given points, e.g. [[10,10],[20,15],[30,30]]`),
		mcp.WithString("points", mcp.Description("JSON array of points"), mcp.Required()),
		mcp.WithString("color", mcp.Description("Stroke color as #rrggbb (default: current drawing color)")),
		mcp.WithNumber("size", mcp.Description("Brush size in pixels (default: current size)")),
	), s.handleDesignDrawStroke)

	// ── design_erase_at ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("design_erase_at",
		mcp.WithDescription("Erase every drawing stroke passing near (x,y)"),
		mcp.WithNumber("x", mcp.Description("X"), mcp.Required()),
		mcp.WithNumber("y", mcp.Description("Y"), mcp.Required()),
	), s.handleDesignEraseAt)

	// ── design_undo / design_redo ──────────────────────
	for _, back := range []bool{true, false} {
		name, verb := "design_redo", "Redo"
		if back {
			name, verb = "design_undo", "Undo"
		}
		s.mcp.AddTool(mcp.NewTool(name,
			mcp.WithDescription(verb+" one edit. Drawing strokes and text/shape edits keep separate histories."),
			mcp.WithString("history", mcp.Description("Which history to step (default: the one of the active tool)"),
				mcp.Enum("drawing", "text")),
		), s.stepHandler(back))
	}

	// ── design_clear ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("design_clear",
		mcp.WithDescription("🛑 DESTRUCTIVE: Reset the design to the default text and remove all shapes and drawings. Clears undo history. Requires user approval."),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDesignClear)

	// ── design_export ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("design_export",
		mcp.WithDescription("Export the design as a transparent PNG to a file path"),
		mcp.WithString("path", mcp.Description("Destination file path"), mcp.Required()),
	), s.handleDesignExport)
}

func (s *Server) handleDesignView(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.design.View())
}

func (s *Server) handleDesignSetText(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var patch design.TextPatch
	if raw := req.GetString("patch", ""); raw != "" {
		if err := parseJSON(raw, &patch); err != nil {
			return nil, fmt.Errorf("invalid patch JSON: %w", err)
		}
	}
	if text, ok := req.GetArguments()["text"].(string); ok {
		patch.Content = &text
	}
	preset := req.GetString("gradientPreset", "")

	view, err := s.design.Apply(ctx, func(e *design.Editor) error {
		if preset != "" {
			if err := e.ApplyGradientPreset(preset); err != nil {
				return err
			}
		}
		return e.UpdateText(patch)
	})
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(view.Document.Text)
}

func (s *Server) handleDesignAddShape(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tool := design.Tool("shape-" + req.GetString("type", ""))
	if _, ok := tool.ShapeKind(); !ok || !tool.Valid() {
		return nil, fmt.Errorf("type must be circle, square or line")
	}
	from := design.Point{X: req.GetFloat("x1", 0), Y: req.GetFloat("y1", 0)}
	to := design.Point{X: req.GetFloat("x2", 0), Y: req.GetFloat("y2", 0)}

	view, err := s.design.Apply(ctx, func(e *design.Editor) error {
		return e.Gesture(tool, from, to)
	})
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(map[string]any{"shapes": len(view.Document.Shapes)})
}

func (s *Server) handleDesignDrawStroke(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	points, err := parsePoints(req.GetString("points", ""))
	if err != nil {
		return nil, err
	}
	if len(points) < 2 {
		return mcp.NewToolResultError("a stroke needs at least two points"), nil
	}
	color := req.GetString("color", "")
	size := req.GetFloat("size", 0)

	view, err := s.design.Apply(ctx, func(e *design.Editor) error {
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
		return e.Gesture(design.ToolDraw, points...)
	})
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(map[string]any{"drawings": len(view.Document.Drawings)})
}

func (s *Server) handleDesignEraseAt(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	at := design.Point{X: req.GetFloat("x", 0), Y: req.GetFloat("y", 0)}
	before := len(s.design.View().Document.Drawings)

	view, err := s.design.Apply(ctx, func(e *design.Editor) error {
		return e.Gesture(design.ToolEraser, at)
	})
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(map[string]any{
		"erased":   before - len(view.Document.Drawings),
		"drawings": len(view.Document.Drawings),
	})
}

// stepHandler undoes or redoes in the requested history by switching to a
// tool that owns it for the duration of the step.
func (s *Server) stepHandler(back bool) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		history := req.GetString("history", "")
		stepped := false
		view, err := s.design.Apply(ctx, func(e *design.Editor) error {
			prev := e.Tool()
			switch history {
			case "drawing":
				e.SetTool(design.ToolDraw)
			case "text":
				e.SetTool(design.ToolText)
			}
			if back {
				stepped = e.Undo()
			} else {
				stepped = e.Redo()
			}
			return e.SetTool(prev)
		})
		if err != nil {
			return errorResult(err)
		}
		if !stepped {
			if back {
				return textResult("Nothing to undo"), nil
			}
			return textResult("Nothing to redo"), nil
		}
		return jsonResult(map[string]any{"canUndo": view.CanUndo, "canRedo": view.CanRedo})
	}
}

func (s *Server) handleDesignClear(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc := s.design.View().Document
	approved, err := s.approval.Request(ctx, "design_clear",
		fmt.Sprintf("Reset the design (%d shapes, %d drawings)", len(doc.Shapes), len(doc.Drawings)),
		fmt.Sprintf(`{"shapes":%d,"drawings":%d}`, len(doc.Shapes), len(doc.Drawings)))
	if err != nil || !approved {
		return textResult("Action rejected by user"), nil
	}
	if _, err := s.design.Apply(ctx, func(e *design.Editor) error {
		e.ClearAll()
		return nil
	}); err != nil {
		return errorResult(err)
	}
	return textResult("Design cleared"), nil
}

func (s *Server) handleDesignExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := req.GetString("path", "")
	if path == "" {
		return nil, fmt.Errorf("path is required")
	}
	export, err := s.design.ExportToFile(ctx, path)
	if err != nil {
		return errorResult(err)
	}
	return jsonResult(export)
}
