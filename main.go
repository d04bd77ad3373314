package main

import "github.com/bloglist/apiserver/cmd"

func main() {
	cmd.Execute()
}
