package main

import "ordergw/cmd"

func main() {
	cmd.Execute()
}
