package main

import "github.com/oshokin/cstation/cmd/cstation/cmd"

func main() {
	cmd.Execute()
}
