package cli

import (
	"fmt"

	"github.com/dmitrijs2005/reposhelf/internal/common"
	"github.com/spf13/cobra"
)

func NewRemoveCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID...",
		Short:   "remove repositories and purge their apps",
		Aliases: []string{"remove"},
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := deps.App(cmd.Context())
			if err != nil {
				return err
			}
			for _, a := range args {
				id, err := parseID(a)
				if err != nil {
					return err
				}
				n, err := app.Repos.Remove(cmd.Context(), id)
				if err != nil {
					return err
				}
				if n == 0 {
					return fmt.Errorf("repos/%d: %w", id, common.ErrorNotFound)
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "removed repos/%d\n", id)
			}
			return nil
		},
	}
}

func NewPurgeCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "purge ID",
		Short: "delete the apps of a repository but keep the repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			app, err := deps.App(cmd.Context())
			if err != nil {
				return err
			}
			res, err := app.Repos.PurgeApps(cmd.Context(), id)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "purged %d apks and %d apps\n", res.Apks, res.Apps)
			return nil
		},
	}
}
