package main

import (
	"os"

	"github.com/goliatone/go-alerts/cmd/alertprefs/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
