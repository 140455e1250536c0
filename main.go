package main

import (
	"os"

	"github.com/opsgrade/mlcost/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
