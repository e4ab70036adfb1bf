package main

import (
	"github.com/rustyeddy/riskcore/internal/cli"
)

func main() {
	cli.Execute()
}
