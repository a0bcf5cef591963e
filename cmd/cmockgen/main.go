package main

import "github.com/mvp-joe/cmockgen/internal/cli"

func main() {
	cli.Execute()
}
