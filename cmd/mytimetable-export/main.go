package main

import "github.com/pfrederiksen/mytimetable-export/internal/cli"

func main() {
	cli.Execute()
}
