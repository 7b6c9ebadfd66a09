package main

import (
	"os"

	"github.com/nsxbet/klc-reviewer/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
