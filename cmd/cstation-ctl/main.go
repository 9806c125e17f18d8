package main

import "github.com/oshokin/cstation/cmd/cstation-ctl/cmd"

func main() {
	cmd.Execute()
}
