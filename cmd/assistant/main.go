package main

import "assistant/cmd/assistant/cmd"

func main() {
	cmd.Execute()
}
