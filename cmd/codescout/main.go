package main

import "github.com/mvp-joe/codescout/internal/cli"

func main() {
	cli.Execute()
}
