package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"discover-server/di"
)

func newSeedCmd() *cobra.Command {
	var fixture string
	var fake int
	var seed int64
	var reset bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load establishments into the redis backend",
		Example: `  discover seed --fixture resources/establishments.json
  discover seed --fake 200 --seed 7
  discover seed --reset --fixture resources/establishments.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			hasSource := fixture != "" || fake > 0
			if fixture != "" && fake > 0 || !hasSource && !reset {
				return errors.New("exactly one of --fixture or --fake is required")
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			svc, closeFn, err := di.NewSeedService(cmd.Context(), cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeFn()

			if reset {
				removed, err := svc.Reset(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %d establishments\n", removed)
				if !hasSource {
					return nil
				}
			}

			var n int
			if fixture != "" {
				n, err = svc.SeedFromFixture(cmd.Context(), fixture)
			} else {
				n, err = svc.SeedFake(cmd.Context(), fake, seed, cfg.OriginLat, cfg.OriginLong, cfg.RadiusMeters)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nseeded %d establishments\n", n)
			return err
		},
	}
	cmd.Flags().StringVar(&fixture, "fixture", "", "JSON file of establishment records")
	cmd.Flags().IntVar(&fake, "fake", 0, "number of fake establishments to generate")
	cmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed for --fake")
	cmd.Flags().BoolVar(&reset, "reset", false, "delete every stored establishment first")
	return cmd
}
