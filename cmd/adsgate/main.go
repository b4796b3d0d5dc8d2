package main

import (
	"github.com/liftly-labs/adsgate/internal/adapters/driving/cli"
)

func main() {
	cli.Execute()
}
