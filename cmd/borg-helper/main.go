package main

import "github.com/arthur-debert/homebin/internal/cli"

func main() {
	cli.Main(cli.NewBorgHelperCmd())
}
