package main

import (
	_ "time/tzdata"

	"github.com/Tiliavir/cwr/cmd"
)

func main() {
	cmd.Execute()
}
