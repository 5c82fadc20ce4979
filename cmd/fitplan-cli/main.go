package main

import (
	"os"

	"github.com/yndnr/fitplan-go/internal/cli/command"
)

func main() {
	os.Exit(command.Main(os.Args, os.Stderr))
}
