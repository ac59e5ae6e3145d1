package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/zenmemory/pkg/domain/model"
	"github.com/urfave/cli/v3"
)

func ownerFlag(dst *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "owner",
		Aliases:     []string{"email"},
		Usage:       "Owner of the memories (usually an email address)",
		Required:    true,
		Destination: dst,
	}
}

func cmdRemember() *cli.Command {
	var owner string
	var cfg engineConfig

	flags := []cli.Flag{ownerFlag(&owner)}
	flags = append(flags, cfg.Flags()...)

	return &cli.Command{
		Name:      "remember",
		Usage:     "Store an utterance for an owner",
		ArgsUsage: "<text...>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			text := strings.Join(c.Args().Slice(), " ")

			uc, closeStore, err := cfg.build(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			id, err := uc.Memory.Remember(ctx, model.Owner(owner), text)
			if err != nil {
				return goerr.Wrap(err, "failed to remember")
			}

			_, _ = color.New(color.FgGreen).Fprint(c.Root().Writer, "saved ")
			_, _ = fmt.Fprintln(c.Root().Writer, id)
			return nil
		},
	}
}

func cmdRecall() *cli.Command {
	var owner string
	var limit int
	var cfg engineConfig

	flags := []cli.Flag{
		ownerFlag(&owner),
		&cli.IntFlag{
			Name:        "limit",
			Usage:       "Maximum number of memories (0 means the engine default)",
			Destination: &limit,
		},
	}
	flags = append(flags, cfg.Flags()...)

	return &cli.Command{
		Name:      "recall",
		Usage:     "Print an owner's memories closest to a query, best first",
		ArgsUsage: "<query...>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			query := strings.Join(c.Args().Slice(), " ")

			uc, closeStore, err := cfg.build(ctx)
			if err != nil {
				return err
			}
			defer closeStore()

			memories, err := uc.Memory.Recall(ctx, model.Owner(owner), query, limit)
			if err != nil {
				return goerr.Wrap(err, "failed to recall")
			}

			w := c.Root().Writer
			if len(memories) == 0 {
				_, _ = color.New(color.FgYellow).Fprintln(w, "no memories")
				return nil
			}
			rank := color.New(color.FgCyan)
			for i, text := range memories {
				_, _ = rank.Fprintf(w, "%d. ", i+1)
				_, _ = fmt.Fprintln(w, text)
			}
			return nil
		},
	}
}
