package main

import "github.com/workstack/workforce-management/cmd"

func main() {
	cmd.Execute()
}
