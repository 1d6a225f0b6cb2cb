package main

import (
	"os"

	"github.com/reinacht/medtrack/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
