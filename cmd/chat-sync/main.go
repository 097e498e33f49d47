package main

import "github.com/omniwire/chat-sync/cmd"

func main() {
	cmd.Execute()
}
