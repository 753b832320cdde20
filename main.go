package main

import "github.com/converseworks/convkit/internal/cli"

func main() {
	cli.Execute()
}
