package main

import "github.com/rustyeddy/poscalc/internal/cli"

func main() {
	cli.Execute()
}
