package main

import (
	"os"

	"github.com/abhisek/feaquiz/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
