package main

import (
	"os"

	"github.com/buidl-labs/muxsync/scaffold"
)

func main() {
	os.Exit(scaffold.Run(os.Args[1:], os.Stdout, os.Stderr))
}
