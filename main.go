package main

import (
	"embed"
	"flag"
	"fmt"
	"os"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/menu"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/mac"

	storefrontApp "storefront/internal/app"
	"storefront/internal/config"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	configPath := flag.String("config", config.DefaultPath(), "path to config.yaml")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [-config path] [mcp|serve]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	switch flag.Arg(0) {
	case "mcp":
		exitOnError(storefrontApp.ServeMCP(*configPath))
		return
	case "serve":
		exitOnError(storefrontApp.ServeHTTP(*configPath))
		return
	case "":
	default:
		flag.Usage()
		os.Exit(2)
	}

	app := storefrontApp.New(*configPath)

	// macOS needs an Edit menu for Cmd+C/V/X/A to reach the WebView
	appMenu := menu.NewMenu()
	appMenu.Append(menu.EditMenu())

	err := wails.Run(&options.App{
		Title:     "Storefront",
		Width:     1280,
		Height:    800,
		MinWidth:  800,
		MinHeight: 600,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		BackgroundColour: &options.RGBA{R: 17, G: 24, B: 39, A: 1},
		Menu:             appMenu,
		OnStartup:        app.Startup,
		OnShutdown:       app.Shutdown,
		Bind: []interface{}{
			app,
		},
		Mac: &mac.Options{
			TitleBar: &mac.TitleBar{
				TitlebarAppearsTransparent: true,
				HideTitle:                  true,
				FullSizeContent:            true,
			},
			About: &mac.AboutInfo{
				Title:   "Storefront",
				Message: "Shop, check out and design custom prints",
			},
		},
	})

	if err != nil {
		println("Error:", err.Error())
	}
}

func exitOnError(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
