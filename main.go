package main

import "github.com/morhenderson/Truss-Me/cmd"

func main() {
	cmd.Execute()
}
