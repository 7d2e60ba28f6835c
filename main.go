package main

import "timepunch/cmd"

func main() {
	cmd.Execute()
}
