// Command instrument-plan prints the enhancement plan of a type catalog.
package main

import (
	"os"

	"github.com/luxas/deklarative/instrument/cmd/instrument-plan/command"
)

func main() {
	if err := command.RootCommand(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}
