package main

import "itinvent-bot/internal/cli"

func main() {
	cli.Execute()
}
