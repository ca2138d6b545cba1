package main

import "github.com/lzwang26/stress-sensing-mitigation/cmd"

func main() {
	cmd.Execute()
}
