package main

import "github.com/mmcloughlin/take/cmd/take/cmd"

func main() {
	cmd.Execute()
}
