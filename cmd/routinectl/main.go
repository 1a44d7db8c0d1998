package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "routinectl",
		Usage: "Run and inspect cooperative routine schedulers",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Aliases: []string{"C"},
				Value:   ".",
				Usage:   "Directory searched for the settings file",
			},
			&cli.StringFlag{
				Name:  "settings",
				Value: "async_settings.toml",
				Usage: "Settings file name inside the config directory",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Log debug messages",
			},
		},
		Commands: []*cli.Command{
			demoCommand(),
			serveCommand(),
			settingsCommand(),
		},
	}
}

func optionsFrom(c *cli.Context) options {
	return options{
		configDir:    c.String("config-dir"),
		settingsName: c.String("settings"),
		verbose:      c.Bool("verbose"),
	}
}
