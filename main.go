package main

import (
	"github.com/malt3/pe-dump/cmd"
)

func main() {
	cmd.Execute()
}
