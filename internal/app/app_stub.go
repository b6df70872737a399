//go:build !ebiten

package app

// guiBuild reports whether the canvas view is compiled in.
const guiBuild = false

const guiHint = "the canvas view requires building with the 'ebiten' tag; re-run with -headless or `go run -tags ebiten ./cmd/ppsim`"
