package main

import "github.com/CosmoTheDev/zwischen/cmd"

func main() {
	cmd.Execute()
}
