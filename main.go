package main

import (
	"embed"

	"pulselogic/internal/cli"
)

//go:embed all:frontend/dist
var appAssets embed.FS

func main() {
	cli.Execute(appAssets)
}
