package main

import (
	"os"

	"github.com/opd-ai/msgcrypt/cmd/msgcrypt/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
