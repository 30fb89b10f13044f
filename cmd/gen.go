// cmd/gen.go

package main

import (
	"context"
	"fmt"
	"math/rand"

	"ParIO/pkg/chunk"
	"ParIO/pkg/comm"
	"ParIO/pkg/utils"

	"github.com/urfave/cli/v2"
)

const genBatch = 1 << 16

func genFlags() *cli.Command {
	return &cli.Command{
		Name:      "gen",
		Usage:     "write a file of random float64 values",
		ArgsUsage: "FILE",
		Action:    gen,
		Flags: append(append([]cli.Flag{
			&cli.Int64Flag{
				Name:     "items",
				Aliases:  []string{"n"},
				Usage:    "number of values in the file",
				Required: true,
			},
			&cli.Int64Flag{
				Name:  "seed",
				Value: 1,
				Usage: "seed of the generator, the same seed and workers give the same file",
			},
		}, workerFlags()...), storageFlags()...),
	}
}

func gen(c *cli.Context) error {
	setLoggerLevel(c)
	if c.Args().Len() < 1 {
		return fmt.Errorf("FILE is needed")
	}
	name := c.Args().Get(0)
	items := c.Int64("items")
	seed := c.Int64("seed")
	store, err := createStorage(c)
	if err != nil {
		return err
	}
	defer closeStorage(store)

	progress, bar := utils.NewDynProgressBar("generating: ", c.Bool("quiet"))
	bar.SetTotal(items, false)
	err = runWorkers(c, []string{"gen", store.String(), name}, func(ctx context.Context, w comm.Communicator) error {
		part, err := chunk.Partition(w.Rank(), w.Size(), items)
		if err != nil {
			return err
		}
		rng := rand.New(rand.NewSource(seed + int64(w.Rank())))
		values := make([]float64, part.Len())
		for i := range values {
			values[i] = rng.Float64()
			if i%genBatch == genBatch-1 {
				bar.IncrBy(genBatch)
			}
		}
		bar.IncrInt64(part.Len() % genBatch)

		ch, err := chunk.OpenForWrite(store, name, chunk.Float64.Size(), w)
		if err != nil {
			return err
		}
		defer ch.Close()
		if err = chunk.WriteItems(ctx, ch, chunk.Float64, values); err != nil {
			return err
		}
		if isRoot(w) {
			logger.Infof("wrote %d items (%d bytes) to %s%s", ch.NumItems(), ch.FileSize(), store, name)
		}
		return nil
	})
	bar.SetTotal(-1, true)
	progress.Wait()
	return err
}
