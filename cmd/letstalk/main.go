package main

import "letstalk/cmd/letstalk/cli"

func main() {
	cli.Execute()
}
