package main

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/spf13/cobra"

	"github.com/pthm-cable/flock/config"
	"github.com/pthm-cable/flock/game"
)

func newViewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Open the interactive viewer",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Cfg()

			rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Flock")
			defer rl.CloseWindow()
			rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

			g, err := game.New(game.Options{
				Config: cfg,
				Seed:   seedFlag(cmd),
				Title:  "Flock",
			})
			if err != nil {
				return err
			}
			defer g.Unload()

			g.Run()
			return nil
		},
	}
}
