package main

import "soloquest/cmd/sq/root"

func main() {
	root.Execute()
}
