package main

import (
	"os"

	"github.com/promptshelf/promptshelf-backend/internal/client/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
