package main

import (
	"os"

	"github.com/agricoventas/platform/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
