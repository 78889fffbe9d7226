package main

import (
	"os"

	"github.com/super-flat/actorsdi/sample/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
