package main

import "plansync/cmd"

func main() {
	cmd.Execute()
}
