package cli

import (
	"fmt"

	"github.com/dmitrijs2005/reposhelf/internal/repos"
	"github.com/spf13/cobra"
)

func NewWatchCmd(deps *Deps) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "watch [ID]",
		Short: "print an event for every change",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := repos.Collection()
			if len(args) == 1 {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				target = repos.Single(id)
			}

			app, err := deps.App(cmd.Context())
			if err != nil {
				return err
			}
			c, err := app.Repos.Watch(cmd.Context(), target)
			if err != nil {
				return err
			}
			defer c.Close()

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "watching %s\n", target)

			for seen := 0; count <= 0 || seen < count; seen++ {
				select {
				case <-cmd.Context().Done():
					return nil
				case ev, ok := <-c.Changes():
					if !ok {
						return nil
					}
					if deps.Output != OutputTable {
						if err := encode(out, deps.Output, ev); err != nil {
							return err
						}
						continue
					}
					_, _ = fmt.Fprintf(out, "%s  %s  %s\n", ev.At.Format("15:04:05.000"), ev.Address, ev.ID)
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&count, "count", 0, "exit after this many events (0 runs until interrupted)")
	return cmd
}
