package main

import (
	"os"

	"github.com/abhisek/earworm/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
