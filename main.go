package main

import (
	"github.com/projeto-rodrigo/chatia/cmd"
)

func main() {
	cmd.Execute()
}
