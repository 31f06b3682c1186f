package main

import (
	"os"

	"github.com/byflash/drive-cli/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
