package main

import "pulselogic/internal/cli"

// main runs the shell serving the frontend from ./frontend/dist on disk.
func main() {
	cli.Execute(nil)
}
