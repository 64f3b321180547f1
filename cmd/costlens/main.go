package main

import (
	"github.com/costlens/costlens/cmd/costlens/commands"
)

func main() {
	commands.Execute()
}
