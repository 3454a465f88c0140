package main

import "github.com/quickbar/cli/cmd"

func main() {
	cmd.Execute()
}
