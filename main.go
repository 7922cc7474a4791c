package main

import (
	"os"

	"github.com/schemalens/schemalens/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
