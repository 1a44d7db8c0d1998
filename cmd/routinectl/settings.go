package main

import (
	"fmt"

	"github.com/Swind/go-routine-runner/core"
	"github.com/samber/do"
	"github.com/urfave/cli/v2"
)

func settingsCommand() *cli.Command {
	return &cli.Command{
		Name:   "settings",
		Usage:  "Print the effective settings as TOML",
		Action: settingsAction,
	}
}

func settingsAction(c *cli.Context) error {
	injector := newContainer(optionsFrom(c))
	defer injector.Shutdown()

	settings, err := do.Invoke[core.Settings](injector)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed to load settings: %v", err), 1)
	}
	data, err := settings.Encode()
	if err != nil {
		return cli.Exit(fmt.Sprintf("Failed to encode settings: %v", err), 1)
	}
	_, err = c.App.Writer.Write(data)
	return err
}
