package main

import "github.com/terralens/spatialval/internal/cli"

func main() {
	cli.Execute()
}
