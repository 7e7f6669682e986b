// Command installreport generates the installation reports from the command
// line: the lot cartography, delivery delays and the installation export.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
