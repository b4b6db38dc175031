// Package main is the entry point for the cvariants CLI.
package main

import "cvariants.dev/pkg/cvariants/cmd"

func main() {
	cmd.Execute()
}
