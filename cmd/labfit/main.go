// Command labfit fits, plots and tabulates laboratory data.
package main

import (
	"os"

	"github.com/HamletTheHamster/labutils/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
