package main

import "github.com/sudankdk/cee/cmd"

func main() {
	cmd.Execute()
}
