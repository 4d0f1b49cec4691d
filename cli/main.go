package main

import (
	"os"

	"github.com/usagetop/usagetop/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
