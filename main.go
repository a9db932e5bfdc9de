package main

import "project-aggregator/cmd"

func main() {
	cmd.Execute()
}
