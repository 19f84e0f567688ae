package main

import "github.com/mabhi256/medi/cmd"

func main() {
	cmd.Execute()
}
