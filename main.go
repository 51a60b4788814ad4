package main

import "timesift/cmd"

func main() {
	cmd.Execute()
}
