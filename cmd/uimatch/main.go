package main

import "github.com/devicelab-dev/uimatch/pkg/cli"

func main() {
	cli.Execute()
}
