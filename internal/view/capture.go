package view

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
)

// captureName names the screenshot taken at tick.
func captureName(dir string, tick int) string {
	return filepath.Join(dir, fmt.Sprintf("ppsim-%08d.png", tick))
}

// writePNG encodes w*h RGBA pixels to path. pix is owned by the call.
func writePNG(path string, pix []byte, w, h int) error {
	if len(pix) != 4*w*h {
		return fmt.Errorf("capture: %d bytes for %dx%d pixels", len(pix), w, h)
	}
	img := &image.RGBA{Pix: pix, Stride: 4 * w, Rect: image.Rect(0, 0, w, h)}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("capture: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("capture %s: %w", path, err)
	}
	return f.Close()
}

// savePath picks the state file used by the save and load keys.
func savePath(env Env) string {
	if env.Save != "" {
		return env.Save
	}
	return "ppsim-state.txt"
}

// loadPath prefers the startup file for the load key.
func loadPath(env Env) string {
	if env.Load != "" {
		return env.Load
	}
	return savePath(env)
}
