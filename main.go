package main

import "github.com/riptano/table-data-demo/cmd"

func main() {
	cmd.Execute()
}
