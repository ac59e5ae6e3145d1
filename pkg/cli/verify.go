package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/zenmemory/pkg/cli/config"
	"github.com/secmon-lab/zenmemory/pkg/domain/model"
	"github.com/secmon-lab/zenmemory/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdVerify() *cli.Command {
	var storeCfg config.Store

	return &cli.Command{
		Name:  "verify",
		Usage: "Check every partition of the local store for corruption",
		Flags: storeCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			store, err := storeCfg.ConfigureLocal()
			if err != nil {
				return err
			}
			defer func() {
				if err := store.Close(); err != nil {
					logging.From(ctx).Error("failed to close store", "error", err.Error())
				}
			}()

			reports, err := store.Verify(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to verify local store")
			}

			w := c.Root().Writer
			ok := color.New(color.FgGreen)
			bad := color.New(color.FgRed)

			var corrupted int
			for _, r := range reports {
				if r.Err != nil {
					corrupted++
					_, _ = bad.Fprint(w, "CORRUPTED ")
					_, _ = fmt.Fprintf(w, "%s: %v\n", r.Name, r.Err)
					logging.From(ctx).Warn("corrupted partition", "partition", r.Name, "error", r.Err)
					continue
				}
				_, _ = ok.Fprint(w, "OK ")
				_, _ = fmt.Fprintf(w, "%s (%d memories)\n", r.Name, r.Count)
			}

			_, _ = fmt.Fprintf(w, "%d partitions checked, %d corrupted\n", len(reports), corrupted)
			if corrupted > 0 {
				return goerr.Wrap(model.ErrCorrupted, "local store has corrupted partitions",
					goerr.V("corrupted", corrupted), goerr.V(model.PathKey, store.BaseDir()))
			}
			return nil
		},
	}
}
