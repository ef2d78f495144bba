package main

import "github.com/okidwi/storefront/cmd"

func main() {
	cmd.Start()
}
