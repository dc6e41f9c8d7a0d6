package main

import "constructerp/cmd"

func main() {
	cmd.Execute()
}
