package service

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"storefront/internal/config"
	"storefront/internal/design"
	"storefront/internal/design/render"
)

// ─────────────────────────────────────────────────────────────
// Design Service: canvas editor session and PNG export
// ─────────────────────────────────────────────────────────────

// SaveDialog asks the user where to save a file. An empty path means cancelled.
type SaveDialog func(ctx context.Context, defaultName string) (string, error)

// Export is one rendered design.
type Export struct {
	Filename string `json:"filename"`
	Path     string `json:"path,omitempty"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Size     int    `json:"size"`
}

// DesignService owns the editor of the design session.
type DesignService struct {
	editor  *design.Editor
	emitter EventEmitter
	logger  *zap.Logger
	now     func() time.Time

	mu      sync.Mutex
	product string
	dialog  SaveDialog
}

func NewDesignService(cfg config.DesignerConfig, emitter EventEmitter, logger *zap.Logger) *DesignService {
	if emitter == nil {
		emitter = NopEmitter{}
	}
	editor := design.NewEditor(design.Options{
		Width:    cfg.Width,
		Height:   cfg.Height,
		Mode:     design.HistoryMode(cfg.HistoryMode),
		Limit:    cfg.HistoryLimit,
		Measurer: render.Measurer{},
	})
	return &DesignService{
		editor:  editor,
		emitter: emitter,
		logger:  logger,
		now:     time.Now,
		product: cfg.ProductName,
	}
}

func (s *DesignService) Editor() *design.Editor { return s.editor }

// SetSaveDialog installs the file picker used by ExportToFile.
func (s *DesignService) SetSaveDialog(d SaveDialog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dialog = d
}

// SetProduct names the product the design is for; it prefixes export filenames.
func (s *DesignService) SetProduct(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.product = name
}

func (s *DesignService) View() design.View { return s.editor.View() }

// Apply runs fn against the editor and broadcasts the resulting view.
func (s *DesignService) Apply(ctx context.Context, fn func(*design.Editor) error) (design.View, error) {
	if err := fn(s.editor); err != nil {
		return s.editor.View(), err
	}
	v := s.editor.View()
	s.emitter.Emit(ctx, EventDesignChanged, v)
	return v, nil
}

// RenderPNG exports the document at the live canvas size.
func (s *DesignService) RenderPNG() ([]byte, Export, error) {
	w, h := s.editor.Size()
	img, err := render.Export(s.editor.Document(), w, h)
	if err != nil {
		return nil, Export{}, fmt.Errorf("render design: %w", err)
	}
	data, err := render.EncodePNG(img)
	if err != nil {
		return nil, Export{}, err
	}
	s.mu.Lock()
	product := s.product
	s.mu.Unlock()
	return data, Export{
		Filename: render.Filename(product, s.now()),
		Width:    w,
		Height:   h,
		Size:     len(data),
	}, nil
}

// PreviewPNG renders what the editor canvas currently shows.
func (s *DesignService) PreviewPNG() ([]byte, error) {
	v := s.editor.View()
	img, err := render.Preview(v.Document, v.Width, v.Height, render.OverlayFrom(v))
	if err != nil {
		return nil, fmt.Errorf("render preview: %w", err)
	}
	return render.EncodePNG(img)
}

// ExportToFile writes the PNG to path. With an empty path the save dialog is
// asked; a cancelled dialog returns a zero Export and no error.
func (s *DesignService) ExportToFile(ctx context.Context, path string) (Export, error) {
	data, exp, err := s.RenderPNG()
	if err != nil {
		return Export{}, err
	}
	if path == "" {
		s.mu.Lock()
		dialog := s.dialog
		s.mu.Unlock()
		if dialog == nil {
			return Export{}, fmt.Errorf("export design: no path given")
		}
		path, err = dialog(ctx, exp.Filename)
		if err != nil {
			return Export{}, fmt.Errorf("export design: %w", err)
		}
		if path == "" {
			return Export{}, nil
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return Export{}, fmt.Errorf("write %s: %w", path, err)
	}
	exp.Path = path
	s.logger.Info("design exported", zap.String("path", path), zap.Int("bytes", exp.Size))
	return exp, nil
}
