package main

import (
	"os"

	"github.com/TheAlpha16/faucet-go/cmd/faucetctl/cmd"
)

var version = "dev"

func main() {
	cmd.Version = version
	if err := cmd.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
