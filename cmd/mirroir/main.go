package main

import "github.com/jfarcand/mirroir-mcp-sub001/internal/cli"

func main() {
	cli.Execute()
}
