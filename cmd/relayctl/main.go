package main

import "github.com/nfrund/relay/cmd/relayctl/cmd"

func main() {
	cmd.Execute()
}
