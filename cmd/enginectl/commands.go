package main

import (
	"errors"
	"strings"

	"weekchain/pkg/calendar"
	"weekchain/pkg/model"

	"github.com/urfave/cli/v2"
)

var searchFlags = []cli.Flag{
	&cli.StringFlag{Name: "start", Required: true, Usage: "check-in date (YYYY-MM-DD)"},
	&cli.StringFlag{Name: "end", Required: true, Usage: "check-out date (YYYY-MM-DD)"},
	&cli.IntFlag{Name: "party", Required: true, Usage: "party size"},
	&cli.IntFlag{Name: "flex", Usage: "flexibility in days around the requested week"},
	&cli.StringFlag{Name: "destination", Usage: "city or country substring"},
	&cli.StringFlag{Name: "category", Usage: "preferred category"},
}

var tierFilterFlag = &cli.StringFlag{Name: "tier", Usage: "only consider units of this membership tier"}

func matchRequest(c *cli.Context) (*model.MatchRequest, error) {
	start, err := calendar.Parse(c.String("start"))
	if err != nil {
		return nil, err
	}
	end, err := calendar.Parse(c.String("end"))
	if err != nil {
		return nil, err
	}
	return &model.MatchRequest{
		Start:       start,
		End:         end,
		FlexDays:    c.Int("flex"),
		PartySize:   c.Int("party"),
		Destination: c.String("destination"),
		Category:    c.String("category"),
		Tier:        model.Tier(c.String("tier")),
	}, nil
}

func tierArg(c *cli.Context) (model.Tier, error) {
	if c.NArg() != 1 {
		return "", errors.New("expected exactly one tier argument")
	}
	return model.ParseTier(c.Args().First())
}

var matchCmd = &cli.Command{
	Name:  "match",
	Usage: "Find the best unit for a stay",
	Flags: append([]cli.Flag{tierFilterFlag}, searchFlags...),
	Action: func(c *cli.Context) error {
		req, err := matchRequest(c)
		if err != nil {
			return err
		}
		resp, err := clients(c).Matcher.FindBest(c.Context, req)
		if err != nil {
			return err
		}
		return printJSON(c, resp)
	},
}

var alternativesCmd = &cli.Command{
	Name:    "alternatives",
	Aliases: []string{"alt"},
	Usage:   "List alternative units for the exact requested range",
	Flags: append([]cli.Flag{
		&cli.StringFlag{Name: "exclude", Usage: "unit id to leave out"},
		&cli.IntFlag{Name: "limit", Usage: "maximum alternatives (service default when 0)"},
		tierFilterFlag,
	}, searchFlags...),
	Action: func(c *cli.Context) error {
		req, err := matchRequest(c)
		if err != nil {
			return err
		}
		resp, err := clients(c).Matcher.FindAlternatives(c.Context, &model.AlternativesRequest{
			MatchRequest:  *req,
			ExcludeUnitID: c.String("exclude"),
			Limit:         c.Int("limit"),
		})
		if err != nil {
			return err
		}
		return printJSON(c, resp)
	},
}

var statusCmd = &cli.Command{
	Name:  "status",
	Usage: "Show global capacity status and per-tier utilization",
	Action: func(c *cli.Context) error {
		status, err := clients(c).Capacity.Status(c.Context)
		if err != nil {
			return err
		}
		return printJSON(c, status)
	},
}

var canSellCmd = &cli.Command{
	Name:      "can-sell",
	Usage:     "Ask the admission gate whether a tier may sell",
	ArgsUsage: "<tier>",
	Action: func(c *cli.Context) error {
		tier, err := tierArg(c)
		if err != nil {
			return err
		}
		decision, err := clients(c).Capacity.CanSell(c.Context, tier)
		if decision != nil {
			if printErr := printJSON(c, decision); printErr != nil {
				return printErr
			}
		}
		return err
	},
}

var toggleCmd = &cli.Command{
	Name:      "toggle",
	Usage:     "Enable or disable sales for a tier",
	ArgsUsage: "<tier> <on|off>",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "actor", Required: true, Usage: "operator recorded on the change"},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() != 2 {
			return errors.New("expected <tier> <on|off>")
		}
		tier, err := model.ParseTier(c.Args().Get(0))
		if err != nil {
			return err
		}
		var enabled bool
		switch strings.ToLower(c.Args().Get(1)) {
		case "on", "true", "enable":
			enabled = true
		case "off", "false", "disable":
			enabled = false
		default:
			return errors.New("state must be on or off")
		}
		status, err := clients(c).Capacity.SetSalesEnabled(c.Context, tier, &model.SalesToggle{
			Enabled: &enabled,
			Actor:   c.String("actor"),
		})
		if err != nil {
			return err
		}
		return printJSON(c, status)
	},
}

var reserveCmd = &cli.Command{
	Name:  "reserve",
	Usage: "Run the reserve_week flow: admission, match, commit and sale",
	Flags: append([]cli.Flag{
		&cli.StringFlag{Name: "tier", Required: true, Usage: "membership tier"},
		&cli.StringFlag{Name: "holder", Required: true, Usage: "membership holder id"},
		&cli.IntFlag{Name: "alternatives", Usage: "alternatives to return when nothing is reserved"},
	}, searchFlags...),
	Action: func(c *cli.Context) error {
		input := map[string]any{
			"start_date":         c.String("start"),
			"end_date":           c.String("end"),
			"party_size":         c.Int("party"),
			"flexibility_days":   c.Int("flex"),
			"destination":        c.String("destination"),
			"category":           c.String("category"),
			"tier":               c.String("tier"),
			"holder_id":          c.String("holder"),
			"alternatives_limit": c.Int("alternatives"),
		}
		out, err := clients(c).Orchestrator.Execute(c.Context, "reserve_week", input)
		if err != nil {
			return err
		}
		return printJSON(c, out)
	},
}

var snapshotsCmd = &cli.Command{
	Name:  "snapshots",
	Usage: "List recorded capacity snapshots, newest first",
	Flags: []cli.Flag{
		&cli.IntFlag{Name: "limit", Value: 10},
		&cli.Int64Flag{Name: "offset"},
	},
	Action: func(c *cli.Context) error {
		snapshots, meta, err := clients(c).Snapshots.List(c.Context, c.Int("limit"), c.Int64("offset"))
		if err != nil {
			return err
		}
		return printJSON(c, map[string]any{
			"snapshots": snapshots,
			"metadata":  meta,
		})
	},
}
