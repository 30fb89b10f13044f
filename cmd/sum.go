// cmd/sum.go

package main

import (
	"context"
	"fmt"

	"ParIO/pkg/chunk"
	"ParIO/pkg/comm"
	"ParIO/pkg/utils"

	"github.com/urfave/cli/v2"
	"gonum.org/v1/gonum/floats"
)

func sumFlags() *cli.Command {
	return &cli.Command{
		Name:      "sum",
		Usage:     "sum the squares of a file of float64 values",
		ArgsUsage: "FILE",
		Action:    sum,
		Flags:     append(workerFlags(), storageFlags()...),
	}
}

func sum(c *cli.Context) error {
	setLoggerLevel(c)
	if c.Args().Len() < 1 {
		return fmt.Errorf("FILE is needed")
	}
	name := c.Args().Get(0)
	store, err := createStorage(c)
	if err != nil {
		return err
	}
	defer closeStorage(store)

	start := utils.Clock()
	return runWorkers(c, []string{"sum", store.String(), name}, func(ctx context.Context, w comm.Communicator) error {
		sw := utils.NewStopwatch()
		ch, err := chunk.OpenForRead(store, name, chunk.Float64.Size(), w)
		if err != nil {
			return err
		}
		defer ch.Close()
		values, err := chunk.ReadItems(ctx, ch, chunk.Float64)
		if err != nil {
			return err
		}
		sw.Lap("read")
		local := floats.Dot(values, values)
		sw.Lap("compute")
		total, err := w.AllreduceFloat64(ctx, local)
		if err != nil {
			return err
		}
		sw.Lap("reduce")
		logger.Debugf("rank %d: %d items from %d, partial sum %g", w.Rank(), ch.ChunkSize(), ch.FirstItem(), local)

		if !isRoot(w) {
			return nil
		}
		out := c.App.Writer
		fmt.Fprintf(out, "sum of squares: %g\n", total)
		fmt.Fprintf(out, "items: %d, workers: %d\n", ch.NumItems(), w.Size())
		for _, phase := range sw.Phases() {
			fmt.Fprintf(out, "%s: %s\n", phase, sw.Get(phase))
		}
		ru := utils.GetRusage()
		fmt.Fprintf(out, "total: %s, user: %s, system: %s\n", utils.Clock()-start, ru.GetUtime(), ru.GetStime())
		return nil
	})
}
