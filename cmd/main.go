// cmd/main.go

package main

import (
	"os"

	"ParIO/pkg/utils"
	"ParIO/pkg/version"

	"github.com/google/gops/agent"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var logger = utils.GetLogger("pario")

func newApp() *cli.App {
	cli.VersionFlag = &cli.BoolFlag{
		Name: "version", Aliases: []string{"V"},
		Usage: "print only the version",
	}
	return &cli.App{
		Name:                 "pario",
		Usage:                "parallel chunked I/O over flat binary files",
		Version:              version.Version(),
		EnableBashCompletion: true,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"debug", "v"},
				Usage:   "enable debug log",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "only warning and errors",
			},
			&cli.BoolFlag{
				Name:  "trace",
				Usage: "enable trace log",
			},
			&cli.BoolFlag{
				Name:  "no-agent",
				Usage: "disable gops agent",
			},
		},
		Commands: []*cli.Command{
			genFlags(),
			sumFlags(),
			copyFlags(),
			infoFlags(),
			splitFlags(),
		},
	}
}

func main() {
	err := newApp().Run(os.Args)
	if err != nil {
		logger.Fatal(err)
	}
}

func setLoggerLevel(c *cli.Context) {
	if c.Bool("trace") {
		utils.SetLogLevel(logrus.TraceLevel)
	} else if c.Bool("verbose") {
		utils.SetLogLevel(logrus.DebugLevel)
	} else if c.Bool("quiet") {
		utils.SetLogLevel(logrus.WarnLevel)
	} else {
		utils.SetLogLevel(logrus.InfoLevel)
	}
	setupAgent(c)
}

func setupAgent(c *cli.Context) {
	if c.Bool("no-agent") {
		return
	}
	if err := agent.Listen(agent.Options{}); err != nil {
		logger.Debugf("start gops agent: %s", err)
	}
}
