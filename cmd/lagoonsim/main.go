package main

import (
	"os"

	"github.com/lagoon-dex/lagoon/cmd/lagoonsim/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
