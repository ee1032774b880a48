package main

import (
	"os"

	"cv-improver/cmd/cvctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
