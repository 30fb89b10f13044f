// cmd/copy.go

package main

import (
	"context"
	"fmt"

	"ParIO/pkg/chunk"
	"ParIO/pkg/comm"

	"github.com/urfave/cli/v2"
)

func copyFlags() *cli.Command {
	return &cli.Command{
		Name:      "copy",
		Usage:     "copy a file chunk by chunk through the workers",
		ArgsUsage: "SRC DST",
		Action:    copyFile,
		Flags: append(append([]cli.Flag{
			&cli.IntFlag{
				Name:  "item-size",
				Value: 8,
				Usage: "size of one item in bytes",
			},
		}, workerFlags()...), storageFlags()...),
	}
}

func copyFile(c *cli.Context) error {
	setLoggerLevel(c)
	if c.Args().Len() < 2 {
		return fmt.Errorf("SRC and DST are needed")
	}
	src, dst := c.Args().Get(0), c.Args().Get(1)
	if src == dst {
		return fmt.Errorf("cannot copy %s onto itself", src)
	}
	isz := c.Int("item-size")
	store, err := createStorage(c)
	if err != nil {
		return err
	}
	defer closeStorage(store)

	return runWorkers(c, []string{"copy", store.String(), src, dst}, func(ctx context.Context, w comm.Communicator) error {
		in, err := chunk.OpenForRead(store, src, isz, w)
		if err != nil {
			return err
		}
		defer in.Close()
		buf, err := in.ReadChunk(ctx)
		if err != nil {
			return err
		}
		// every worker has its data before anyone truncates the destination
		if err = w.Barrier(ctx); err != nil {
			return err
		}

		out, err := chunk.OpenForWrite(store, dst, isz, w)
		if err != nil {
			return err
		}
		defer out.Close()
		if err = out.WriteChunk(ctx, buf); err != nil {
			return err
		}
		if isRoot(w) {
			logger.Infof("copied %d items of %d bytes from %s to %s", out.NumItems(), isz, src, dst)
		}
		return nil
	})
}
