package main

import (
	"os"
	// Embedded zone database so the bucketing zone loads on minimal images.
	_ "time/tzdata"

	"quiz-stats-service/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
