package main

import "cherrysync/cmd/cli"

func main() {
	cli.Execute()
}
