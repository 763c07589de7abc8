// Command tourguide plays guided product tours in the terminal.
package main

import (
	"os"

	"github.com/Iron-Ham/tourguide/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
