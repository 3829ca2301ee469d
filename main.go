package main

import "github.com/kozaktomas/photo-culler/cmd"

func main() {
	cmd.Execute()
}
