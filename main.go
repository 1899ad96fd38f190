package main

import "github.com/lepinkainen/gutentext/cmd"

var execute = cmd.Execute

func main() {
	execute()
}
