package main

import (
	"os"

	"github.com/rustyeddy/daybot/cmd/daybot/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
