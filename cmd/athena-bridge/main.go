package main

import "github.com/falconforge/athena-bridge/internal/cli"

func main() {
	cli.Execute()
}
