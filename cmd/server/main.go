package main

import "github.com/slanup/server/cmd/server/cmd"

func main() {
	cmd.Execute()
}
