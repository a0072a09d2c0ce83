package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"tokensniper/cmd/bot"
	"tokensniper/cmd/listener"
	"tokensniper/cmd/safetycheck"
)

var Version string

func main() {
	app := cli.NewApp()
	app.Name = "Tokensniper CMD"
	app.Usage = "The tokensniper command line interface"

	app.Commands = []cli.Command{
		botCMD,
		listenerCMD,
		safetyCMD,
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	botCMD = cli.Command{
		Name:        "bot",
		Usage:       "run the trading bot loop",
		Action:      botAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Run the periodic monitor/scan trading loop`,
	}
	listenerCMD = cli.Command{
		Name:        "listener",
		Usage:       "run the launch feed listener",
		Action:      listenerAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Consume the new-token feed into the candidate table`,
	}
	safetyCMD = cli.Command{
		Name:        "safety",
		Usage:       "analyze one token",
		Action:      safetyAction,
		ArgsUsage:   "<token-address>",
		Flags:       []cli.Flag{},
		Description: `Fetch and store a safety analysis for a token`,
	}
)

func botAction(_ *cli.Context) error {

	logrus.Info("Starting bot CMD")
	logrus.WithField("cmd", "bot")

	b := &bot.Bot{}
	err := b.Start()
	if err != nil {
		logrus.WithError(err).Error("Starting cmd")
		return err
	}

	return nil
}

func listenerAction(_ *cli.Context) error {

	logrus.Info("Starting listener CMD")
	logrus.WithField("cmd", "listener")

	l := &listener.Listener{}
	err := l.Start()
	if err != nil {
		logrus.WithError(err).Error("Starting cmd")
		return err
	}

	return nil
}

func safetyAction(c *cli.Context) error {

	logrus.Info("Starting safety CMD")
	logrus.WithField("cmd", "safety")

	s := &safetycheck.SafetyCheck{}
	err := s.Start(c.Args().First())
	if err != nil {
		logrus.WithError(err).Error("Starting cmd")
		return err
	}

	return nil
}
