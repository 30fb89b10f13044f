// cmd/workers.go

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"ParIO/pkg/comm"
	"ParIO/pkg/object"

	"github.com/urfave/cli/v2"
)

func workerFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:    "workers",
			Aliases: []string{"p"},
			Value:   4,
			Usage:   "number of workers started in this process",
		},
		&cli.StringFlag{
			Name:    "redis",
			Usage:   "Redis URL to coordinate one worker per process (redis://[user:password@]host:port/db)",
			EnvVars: []string{"PARIO_REDIS"},
		},
		&cli.IntFlag{
			Name:    "rank",
			Usage:   "rank of this process (with --redis)",
			EnvVars: []string{"PARIO_RANK"},
		},
		&cli.IntFlag{
			Name:    "size",
			Usage:   "number of processes (with --redis)",
			EnvVars: []string{"PARIO_SIZE"},
		},
		&cli.StringFlag{
			Name:    "job",
			Usage:   "identifier of this launch, shared by its processes and different for every launch (with --redis)",
			EnvVars: []string{"PARIO_JOB", "SLURM_JOB_ID"},
		},
	}
}

func storageFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "storage",
			Value: "file",
			Usage: "storage type (file, sftp)",
		},
		&cli.StringFlag{
			Name:  "root",
			Usage: "directory relative paths are resolved against (file storage)",
		},
		&cli.StringFlag{
			Name:    "sftp-addr",
			Usage:   "user[:password]@host[:port][/root] of the SFTP server (env SFTP_PASSWORD)",
			EnvVars: []string{"PARIO_SFTP_ADDR"},
		},
		&cli.Int64Flag{
			Name:  "bwlimit",
			Usage: "bandwidth limit for reads and writes in MiB/s (0 means unlimited)",
		},
	}
}

func createStorage(c *cli.Context) (object.Storage, error) {
	var addr string
	switch c.String("storage") {
	case "sftp":
		addr = c.String("sftp-addr")
		if addr == "" {
			return nil, fmt.Errorf("--sftp-addr is needed for sftp storage")
		}
	default:
		addr = c.String("root")
	}
	store, err := object.CreateStorage(c.String("storage"), addr)
	if err != nil {
		return nil, err
	}
	if bw := c.Int64("bwlimit"); bw > 0 {
		store = object.NewLimited(store, bw<<20, bw<<20)
	}
	logger.Debugf("data uses %s", store)
	return store, nil
}

func closeStorage(store object.Storage) {
	if cl, ok := store.(io.Closer); ok {
		if err := cl.Close(); err != nil {
			logger.Warnf("close %s: %s", store, err)
		}
	}
}

// runWorkers calls fn for every worker this process hosts: all of them when
// the group lives in this process, or the one named by --rank when the
// processes coordinate through Redis. The Redis keys are named after job
// and the launch identifier given by --job.
func runWorkers(c *cli.Context, job []string, fn func(ctx context.Context, c comm.Communicator) error) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	url := c.String("redis")
	if url == "" {
		n := c.Int("workers")
		if n < 1 {
			return fmt.Errorf("invalid number of workers: %d", n)
		}
		return comm.Run(ctx, n, fn)
	}

	launch := c.String("job")
	if launch == "" {
		return fmt.Errorf("--job (or PARIO_JOB) is needed with --redis, use a value unique to this launch")
	}
	name := comm.JobName(append(job, launch, strconv.Itoa(c.Int("size")))...)
	m, err := comm.NewRedis(url, name, c.Int("rank"), c.Int("size"), &comm.RedisConfig{Retries: 10})
	if err != nil {
		return err
	}
	defer m.Close()
	if err = fn(ctx, m); err != nil {
		m.Abort(err)
	}
	return err
}

// isRoot is true for the worker that reports the results.
func isRoot(c comm.Identity) bool {
	return c.Rank() == 0
}
