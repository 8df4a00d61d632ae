package main

import "faceauth/cmd"

func main() {
	cmd.Execute()
}
