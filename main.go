package main

import "github.com/KaramelBytes/sortwise-cli/cmd"

func main() {
	cmd.Execute()
}
