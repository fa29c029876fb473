package main

import "github.com/upbmensa/mensaweb/cmd/mensaweb/command"

func main() {
	command.Execute()
}
