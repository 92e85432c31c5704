package game

import "github.com/pthm-cable/flock/config"

// Screen dimensions used when the config leaves them unset.
const (
	ScreenWidth  = 1280
	ScreenHeight = 800
)

// Options holds configuration for viewer initialization.
type Options struct {
	Config *config.Config
	Seed   int64
	Title  string
}

// screenSize returns the window size from the config, falling back to the defaults.
func (o Options) screenSize() (w, h int) {
	w, h = o.Config.Screen.Width, o.Config.Screen.Height
	if w <= 0 {
		w = ScreenWidth
	}
	if h <= 0 {
		h = ScreenHeight
	}
	return w, h
}
