package main

import (
	"os"

	"github.com/confronto-dev/confronto/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
