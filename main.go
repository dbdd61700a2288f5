package main

import "github.com/prasetyadi/hr-platform/cmd"

func main() {
	cmd.Execute()
}
