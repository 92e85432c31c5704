package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/pthm-cable/flock/store"
)

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List runs recorded in a run store",
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath, _ := cmd.Flags().GetString("db")
			runs, err := store.Open(dbPath)
			if err != nil {
				return err
			}
			defer runs.Close()

			list, err := runs.Runs(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSEED\tBOUNDARY\tPREY\tPRED\tSTARTED\tTICKS\tPROP_DEAD")
			for _, r := range list {
				ticks, dead := "-", "-"
				if r.Finished {
					ticks = fmt.Sprintf("%d", r.Ticks)
					dead = fmt.Sprintf("%.3f", r.PropDead)
				}
				fmt.Fprintf(w, "%d\t%d\t%s\t%d\t%d\t%s\t%s\t%s\n",
					r.ID, r.Seed, r.Boundary, r.Prey, r.Predators,
					r.StartedAt.Local().Format(time.DateTime), ticks, dead)
			}
			return w.Flush()
		},
	}
	cmd.Flags().String("db", "flock.db", "SQLite run store")
	return cmd
}
