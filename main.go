package main

import "umrahtransfer/internal/cli"

func main() {
	cli.Execute()
}
