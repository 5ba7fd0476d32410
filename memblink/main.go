// Package main is the entry point of the memblink command.
package main

import "github.com/sarchlab/memblink/memblink/cmd"

func main() {
	cmd.Execute()
}
