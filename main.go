package main

import "github.com/cppla/greenhabit/cmd"

func main() {
	cmd.Execute()
}
