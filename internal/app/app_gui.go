//go:build ebiten

package app

const guiBuild = true

const guiHint = ""
