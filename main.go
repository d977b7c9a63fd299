package main

import (
	"os"

	"github.com/aibandobast/bandobast/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
