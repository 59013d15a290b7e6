package main

import "github.com/OpenTraceLab/OpenTraceCAD/cmd/edacad/cmd"

func main() {
	cmd.Execute()
}
