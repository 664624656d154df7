package main

import "github.com/gregory-lime/jacques-context-manager/cmd"

func main() {
	cmd.Execute()
}
