package main

import "github.com/iksnae/dm-session/cmd"

func main() {
	cmd.Execute()
}
