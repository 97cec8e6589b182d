package main

import (
	"encoding/json"
	"fmt"
	"os"

	"weekchain/pkg/client"
	"weekchain/pkg/config"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "enginectl",
		Usage: "Operate the matching and capacity services over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "matcher-url",
				Value:   config.DefaultMatcherURL,
				EnvVars: []string{config.EnvMatcherURL},
			},
			&cli.StringFlag{
				Name:    "capacity-url",
				Value:   config.DefaultCapacityURL,
				EnvVars: []string{config.EnvCapacityURL},
			},
			&cli.StringFlag{
				Name:    "auditor-url",
				Value:   config.DefaultAuditorURL,
				EnvVars: []string{config.EnvAuditorURL},
			},
			&cli.StringFlag{
				Name:    "orchestrator-url",
				Value:   config.DefaultOrchestratorURL,
				EnvVars: []string{config.EnvOrchestratorURL},
			},
		},
		Commands: []*cli.Command{
			matchCmd,
			alternativesCmd,
			statusCmd,
			canSellCmd,
			toggleCmd,
			reserveCmd,
			snapshotsCmd,
		},
	}
}

func clients(c *cli.Context) *client.Client {
	cl := client.NewClient()
	cl.SetMatcherClient(c.String("matcher-url"))
	cl.SetCapacityClient(c.String("capacity-url"))
	cl.SetSnapshotClient(c.String("auditor-url"))
	cl.SetOrchestratorClient(c.String("orchestrator-url"))
	return cl
}

func printJSON(c *cli.Context, v any) error {
	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
