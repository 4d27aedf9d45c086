package main

import (
	"os"

	"github.com/mgpai22/voxserve/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
