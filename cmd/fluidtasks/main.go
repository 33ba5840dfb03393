package main

import (
	"os"

	"github.com/sandeepkv93/fluidtasks/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
