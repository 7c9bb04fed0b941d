package main

import (
	"os"
)

func main() {
	// Use the cobra command system instead of direct argument parsing
	err := Execute()
	closeActiveStorage()
	if err != nil {
		os.Exit(1)
	}
}