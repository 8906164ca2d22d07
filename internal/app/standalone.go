package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"storefront/internal/applog"
	"storefront/internal/config"
	"storefront/internal/httpapi"
	mcpserver "storefront/internal/mcp"
)

// logEmitter writes events to the log in the headless modes (no Wails frontend).
type logEmitter struct{ logger *zap.Logger }

func (e logEmitter) Emit(_ context.Context, event string, data any) {
	e.logger.Debug("event", zap.String("event", event), zap.Any("data", data))
}

func startHeadless(configPath string) (context.Context, context.CancelFunc, *Core, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger := applog.Must(cfg.Log)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	core, err := Bootstrap(ctx, cfg, logger, logEmitter{logger: logger.Named("events")})
	if err != nil {
		cancel()
		return nil, nil, nil, err
	}
	core.Start(ctx, configPath)
	return ctx, cancel, core, nil
}

// ServeMCP runs the storefront as a standalone MCP server on stdin/stdout with no GUI.
// There is no UI to answer approvals, so destructive tools run only when
// approval is disabled in the config.
func ServeMCP(configPath string) error {
	ctx, cancel, core, err := startHeadless(configPath)
	if err != nil {
		return err
	}
	defer cancel()
	defer core.Close()

	if core.Config.MCP.RequireApproval {
		core.Logger.Warn("mcp.require_approval is set: destructive tools will time out without a UI")
	}
	srv := mcpserver.New(ctx, mcpserver.Deps{
		Emitter:     core.Emitter,
		Logger:      core.Logger.Named("mcp"),
		Catalog:     core.Catalog,
		Cart:        core.Cart,
		Design:      core.Design,
		AutoApprove: !core.Config.MCP.RequireApproval,
	})
	return srv.ServeStdio()
}

// ServeHTTP runs the JSON API until interrupted.
func ServeHTTP(configPath string) error {
	ctx, cancel, core, err := startHeadless(configPath)
	if err != nil {
		return err
	}
	defer cancel()
	defer core.Close()

	api := httpapi.New(httpapi.Deps{
		Logger:   core.Logger.Named("http"),
		Catalog:  core.Catalog,
		Cart:     core.Cart,
		Checkout: core.Checkout,
		Payments: core.Widget,
		Design:   core.Design,
		Timeout:  core.Config.API.Timeout,
	})
	return api.ListenAndServe(ctx, core.Config.HTTP.Listen)
}
