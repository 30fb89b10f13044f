// cmd/info.go

package main

import (
	"fmt"
	"io"

	"ParIO/pkg/chunk"

	"github.com/urfave/cli/v2"
)

func infoFlags() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     "show the layout of a file and the chunk of every worker",
		ArgsUsage: "FILE ...",
		Action:    info,
		Flags: append([]cli.Flag{
			&cli.IntFlag{
				Name:  "item-size",
				Value: 8,
				Usage: "size of one item in bytes",
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"p"},
				Value:   4,
				Usage:   "number of workers to split the file for",
			},
		}, storageFlags()...),
	}
}

func info(c *cli.Context) error {
	setLoggerLevel(c)
	if c.Args().Len() < 1 {
		return fmt.Errorf("FILE is needed")
	}
	isz := int64(c.Int("item-size"))
	if isz <= 0 {
		return fmt.Errorf("invalid item size: %d", isz)
	}
	store, err := createStorage(c)
	if err != nil {
		return err
	}
	defer closeStorage(store)

	out := c.App.Writer
	for i := 0; i < c.Args().Len(); i++ {
		name := c.Args().Get(i)
		f, err := store.Open(name)
		if err != nil {
			logger.Errorf("open %s: %s", name, err)
			continue
		}
		size, err := f.Size()
		_ = f.Close()
		if err != nil {
			logger.Errorf("stat %s: %s", name, err)
			continue
		}
		fmt.Fprintf(out, "%s :\n  size: %d bytes\n", name, size)
		if size%isz != 0 {
			fmt.Fprintf(out, "  %d bytes after the last whole item of %d bytes\n", size%isz, isz)
			continue
		}
		fmt.Fprintf(out, "  items: %d\n", size/isz)
		parts, err := chunk.Partitions(c.Int("workers"), size/isz)
		if err != nil {
			fmt.Fprintf(out, "  %s\n", err)
			continue
		}
		printPartitions(out, parts, isz)
	}
	return nil
}

func printPartitions(w io.Writer, parts []chunk.Range, itemSize int64) {
	fmt.Fprintf(w, "%6s %12s %12s %12s %16s\n", "rank", "first", "stop", "items", "offset")
	for rank, p := range parts {
		fmt.Fprintf(w, "%6d %12d %12d %12d %16d\n", rank, p.Start, p.Stop, p.Len(), p.Start*itemSize)
	}
}
