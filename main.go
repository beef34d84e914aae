package main

import "github.com/example/quiztube/cmd"

func main() {
	cmd.Execute()
}
