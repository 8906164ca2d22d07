package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storefront/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Window Size Persistence
// ─────────────────────────────────────────────────────────────
//
// Saves and restores the main Wails window size between sessions in the
// same KV store that keeps the cart snapshot.

// WindowSize holds the saved window dimensions.
type WindowSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// WindowSettingsService persists window size between sessions.
type WindowSettingsService struct {
	kv domain.KV
}

// NewWindowSettingsService creates a WindowSettingsService.
func NewWindowSettingsService(kv domain.KV) *WindowSettingsService {
	return &WindowSettingsService{kv: kv}
}

const (
	settingWindowSize   = "settings.window_size"
	defaultWindowWidth  = 1280
	defaultWindowHeight = 800
	settingsTimeout     = 2 * time.Second
)

// LoadWindowSize returns the saved window dimensions, or sensible defaults.
func (s *WindowSettingsService) LoadWindowSize() WindowSize {
	size := WindowSize{Width: defaultWindowWidth, Height: defaultWindowHeight}
	if s.kv == nil {
		return size
	}
	ctx, cancel := context.WithTimeout(context.Background(), settingsTimeout)
	defer cancel()
	data, found, err := s.kv.Get(ctx, settingWindowSize)
	if err != nil || !found {
		return size
	}
	var saved WindowSize
	if json.Unmarshal(data, &saved) != nil {
		return size
	}
	if saved.Width >= 800 {
		size.Width = saved.Width
	}
	if saved.Height >= 600 {
		size.Height = saved.Height
	}
	return size
}

// SaveWindowSize persists the current window dimensions.
func (s *WindowSettingsService) SaveWindowSize(width, height int) error {
	if s.kv == nil {
		return fmt.Errorf("window settings: no store")
	}
	data, err := json.Marshal(WindowSize{Width: width, Height: height})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), settingsTimeout)
	defer cancel()
	return s.kv.Set(ctx, settingWindowSize, data)
}
