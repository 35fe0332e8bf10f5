// Command stockview is the terminal client for the stock viewer.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

var configPath = flag.String("config", "", "Path to stockview.toml (default: STOCKVIEW_CONFIG, then config/stockview.toml)")

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}

// register adds the stockview subcommands.
func register(c *subcommands.Commander) {
	c.Register(&quoteCmd{}, "market")
	c.Register(&chartCmd{}, "market")

	c.Register(&showCmd{}, "portfolio")
	c.Register(&createCmd{}, "portfolio")
	c.Register(&addCmd{}, "portfolio")
	c.Register(&editCmd{}, "portfolio")
	c.Register(&removeCmd{}, "portfolio")
	c.Register(&dropCmd{}, "portfolio")
}
