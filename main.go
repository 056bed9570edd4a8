package main

import "github.com/oatsbridge/oatsbridge/cmd"

func main() {
	cmd.Execute()
}
