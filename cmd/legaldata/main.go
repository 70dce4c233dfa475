package main

import cmd "github.com/rohmanhakim/legaldata/internal/cli"

func main() {
	cmd.Execute()
}
