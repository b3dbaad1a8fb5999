package main

import "github.com/Taichi-iskw/lingopad/cmd"

func main() {
	cmd.Execute()
}
