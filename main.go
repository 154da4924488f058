package main

import "github.com/tessro/blare/internal/cli"

func main() {
	cli.Execute()
}
