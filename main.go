package main

import "grocer/cmd"

func main() {
	cmd.Execute()
}
