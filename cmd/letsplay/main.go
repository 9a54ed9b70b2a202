package main

import "github.com/example/letsplay-client/cmd"

func main() {
	cmd.Execute()
}
