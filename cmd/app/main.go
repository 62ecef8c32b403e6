package main

import (
	"os"

	"github.com/yingtu35/doombot/cmd/app/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
