package main

import "github.com/sw33tLie/granfondo/cmd"

func main() {
	cmd.Execute()
}
