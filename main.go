package main

import (
	"fmt"
	"os"
	_ "time/tzdata"

	"github.com/sadopc/timetag/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
