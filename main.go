package main

import "ytresolve/cmd"

func main() {
	cmd.Execute()
}
