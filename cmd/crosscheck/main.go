package main

import (
	"os"

	"crosscheck/internal/ui/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
