package main

import (
	"os"

	"github.com/rpillai/nsewatch/cmd/nsewatch/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
