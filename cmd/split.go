// cmd/split.go

package main

import (
	"ParIO/pkg/chunk"

	"github.com/urfave/cli/v2"
)

func splitFlags() *cli.Command {
	return &cli.Command{
		Name:   "split",
		Usage:  "show how items are split among workers",
		Action: split,
		Flags: []cli.Flag{
			&cli.Int64Flag{
				Name:     "items",
				Aliases:  []string{"n"},
				Usage:    "number of items",
				Required: true,
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"p"},
				Value:   4,
				Usage:   "number of workers",
			},
			&cli.IntFlag{
				Name:  "item-size",
				Value: 8,
				Usage: "size of one item in bytes, for the offsets",
			},
		},
	}
}

func split(c *cli.Context) error {
	setLoggerLevel(c)
	parts, err := chunk.Partitions(c.Int("workers"), c.Int64("items"))
	if err != nil {
		return err
	}
	printPartitions(c.App.Writer, parts, int64(c.Int("item-size")))
	return nil
}
