package main

import (
	"math/rand"

	"github.com/spf13/cobra"

	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/sim"
	"github.com/pthm-cable/flock/stream"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the simulation and stream snapshots to websocket clients",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Cfg()
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				cfg.Stream.Addr = addr
			}
			seed := seedFlag(cmd)

			// Each restart builds from the same config with the next seed
			next := seed
			build := func() (*sim.Simulation, error) {
				simCfg, err := sim.ConfigFrom(cfg)
				if err != nil {
					return nil, err
				}
				s, err := sim.Build(simCfg, rand.New(rand.NewSource(next)))
				next++
				return s, err
			}

			s, err := build()
			if err != nil {
				return err
			}
			srv := stream.NewServer(s, stream.Options{
				Addr:          cfg.Stream.Addr,
				Rate:          cfg.Stream.Rate,
				StepsPerFrame: cfg.Screen.StepsPerFrame,
				Seed:          seed,
				Rebuild:       build,
			})
			return srv.ListenAndServe(cmd.Context())
		},
	}
	cmd.Flags().String("addr", "", "Listen address (empty = use config)")
	return cmd
}
