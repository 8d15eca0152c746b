package main

import "github.com/LeJamon/goswapd/internal/cli"

func main() {
	cli.Execute()
}
