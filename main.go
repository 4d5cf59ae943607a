package main

import (
	"os"

	"github.com/temirov/submodule-commitmsg/cmd/cli"
)

func main() {
	os.Exit(cli.Run(os.Args))
}
