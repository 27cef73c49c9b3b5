package main

import "github.com/deploymenttheory/go-esp-partition/cmd"

func main() {
	cmd.Execute()
}
