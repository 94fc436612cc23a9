package main

import "resmon/cmd"

func main() {
	cmd.Execute()
}
