package app

import (
	"time"

	"motion-tracker.klederson.com/internal/assets"
)

// TickMsg triggers a frame update for animation.
type TickMsg time.Time

// AssetsLoadedMsg delivers a finished texture load to the device.
type AssetsLoadedMsg struct {
	Textures []*assets.Texture
	Err      error
}

// ResetDoneMsg reports the outcome of a device reset.
type ResetDoneMsg struct {
	Err error
}
