package app

import (
	"context"
	"fmt"
	"sync"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"
	"go.uber.org/zap"

	"storefront/internal/applog"
	"storefront/internal/config"
	mcpserver "storefront/internal/mcp"
	"storefront/internal/service"
)

// App is the main Wails application struct.
// All exported methods are available as Wails bindings.
type App struct {
	ctx        context.Context
	cancel     context.CancelFunc
	configPath string

	core   *Core
	mcp    *mcpserver.Server
	logger *zap.Logger

	startErr error
	wg       sync.WaitGroup
}

// New creates a new App reading its configuration from configPath.
func New(configPath string) *App {
	return &App{configPath: configPath}
}

// Emit implements service.EventEmitter by delegating to the Wails runtime.
func (a *App) Emit(ctx context.Context, event string, data any) {
	if a.ctx == nil {
		return
	}
	wailsRuntime.EventsEmit(a.ctx, event, data)
}

// Startup is called when the app starts.
func (a *App) Startup(ctx context.Context) {
	a.ctx, a.cancel = context.WithCancel(ctx)

	cfg, err := config.Load(a.configPath)
	if err != nil {
		wailsRuntime.LogErrorf(ctx, "Invalid config, using defaults: %v", err)
		cfg = config.Default()
	}
	a.logger = applog.Must(cfg.Log)

	core, err := Bootstrap(a.ctx, cfg, a.logger, a)
	if err != nil {
		a.startErr = err
		wailsRuntime.LogFatalf(ctx, "Failed to start storefront: %v", err)
		return
	}
	a.core = core
	core.Design.SetSaveDialog(a.saveDialog)
	core.Start(a.ctx, a.configPath)

	if size := core.Windows.LoadWindowSize(); size.Width > 0 {
		wailsRuntime.WindowSetSize(ctx, size.Width, size.Height)
	}

	a.mcp = mcpserver.New(a.ctx, mcpserver.Deps{
		Emitter:     a,
		Logger:      a.logger.Named("mcp"),
		Catalog:     core.Catalog,
		Cart:        core.Cart,
		Design:      core.Design,
		AutoApprove: !cfg.MCP.RequireApproval,
	})
	if cfg.MCP.Listen != "" {
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			if err := a.mcp.ServeHTTP(a.ctx, cfg.MCP.Listen); err != nil {
				a.logger.Error("MCP http server stopped", zap.Error(err))
			}
		}()
	}

	// first paint should not wait on the network
	go func() {
		if _, err := core.Catalog.Load(a.ctx); err != nil {
			a.logger.Warn("initial catalog load failed", zap.Error(err))
		}
	}()
}

// Shutdown is called when the app is closing.
func (a *App) Shutdown(ctx context.Context) {
	if a.core != nil {
		w, h := wailsRuntime.WindowGetSize(ctx)
		if err := a.core.Windows.SaveWindowSize(w, h); err != nil {
			a.logger.Warn("save window size", zap.Error(err))
		}
	}
	if a.cancel != nil {
		a.cancel()
	}
	a.wg.Wait()
	if a.core != nil {
		a.core.Close()
	}
}

func (a *App) ready() error {
	if a.core == nil {
		if a.startErr != nil {
			return a.startErr
		}
		return fmt.Errorf("storefront is still starting")
	}
	return nil
}

func (a *App) saveDialog(ctx context.Context, defaultName string) (string, error) {
	return wailsRuntime.SaveFileDialog(a.ctx, wailsRuntime.SaveDialogOptions{
		Title:           "Export Design",
		DefaultFilename: defaultName,
		Filters: []wailsRuntime.FileFilter{
			{DisplayName: "PNG Images (*.png)", Pattern: "*.png"},
		},
	})
}

// ============================================================
// MCP approvals
// ============================================================

// ApproveMCPAction lets a pending destructive agent call run.
func (a *App) ApproveMCPAction(actionID string) {
	if a.mcp != nil {
		a.mcp.Approve(actionID)
	}
}

// RejectMCPAction refuses a pending destructive agent call.
func (a *App) RejectMCPAction(actionID string) {
	if a.mcp != nil {
		a.mcp.Reject(actionID)
	}
}

var _ service.EventEmitter = (*App)(nil)
