package main

import (
	"github.com/oshokin/alarm-clock/cmd/alarm-clockctl/cmd"
)

func main() {
	cmd.Execute()
}
