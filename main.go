package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"traintrack/internal/app"
	intconfig "traintrack/internal/config"
	"traintrack/internal/utils"
)

func main() {
	cliApp := &cli.App{
		Name:  "traintrack",
		Usage: "train seat reservation service",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "listen address, overrides APP_ADDR"},
			&cli.StringFlag{Name: "catalog", Usage: "YAML train catalog, overrides CATALOG_FILE"},
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API and event processors",
				Flags:  []cli.Flag{&cli.StringFlag{Name: "addr"}, &cli.StringFlag{Name: "catalog"}},
				Action: serve,
			},
			{
				Name:  "catalog",
				Usage: "print the train catalog that would be served",
				Flags: []cli.Flag{&cli.StringFlag{Name: "catalog"}},
				Action: func(c *cli.Context) error {
					env, err := loadEnv(c)
					if err != nil {
						return err
					}
					trains, err := intconfig.LoadCatalog(env.CatalogFile)
					if err != nil {
						return err
					}
					for _, tr := range trains {
						fmt.Printf("%s  %-28s %s -> %s  %s-%s\n", tr.TrainNumber, tr.TrainName, tr.FromStation, tr.ToStation, tr.DepartureTime, tr.ArrivalTime)
						for _, a := range tr.Availability {
							fmt.Printf("        %-3s %3d/%-3d %s\n", a.ClassCode, a.AvailableSeats, a.TotalSeats, utils.FormatRupees(a.Price))
						}
					}
					return nil
				},
			},
			{
				Name:  "env",
				Usage: "describe the supported environment variables",
				Action: func(c *cli.Context) error {
					usage, err := intconfig.EnvUsage()
					if err != nil {
						return err
					}
					fmt.Println(usage)
					return nil
				},
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("traintrack exited")
	}
}

func loadEnv(c *cli.Context) (intconfig.Env, error) {
	env, err := intconfig.LoadEnv()
	if err != nil {
		return env, err
	}
	if addr := c.String("addr"); addr != "" {
		env.AppAddr = addr
	}
	if path := c.String("catalog"); path != "" {
		env.CatalogFile = path
	}
	return env, nil
}

func serve(c *cli.Context) error {
	env, err := loadEnv(c)
	if err != nil {
		return err
	}
	utils.InitLogger(env.LogLevel)

	trains, err := intconfig.LoadCatalog(env.CatalogFile)
	if err != nil {
		return err
	}

	a, err := app.New(env, trains)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return a.Run(ctx)
}
