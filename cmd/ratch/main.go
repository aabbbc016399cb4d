package main

import (
	"os"

	"github.com/Iron-Ham/ratch/internal/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
