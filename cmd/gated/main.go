// gated is the storefront access gateway.
package main

import "github.com/shopfront/routegate/internal/cli"

func main() {
	cli.Execute()
}
