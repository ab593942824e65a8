package main

import "github.com/MeKo-Tech/pogo-lens/cmd/lens/cmd"

func main() {
	cmd.Execute()
}
