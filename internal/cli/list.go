package cli

import (
	"github.com/spf13/cobra"
)

func NewListCmd(deps *Deps) *cobra.Command {
	var enabledOnly bool

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "list configured repositories",
		Aliases: []string{"ls"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := deps.App(cmd.Context())
			if err != nil {
				return err
			}
			all, err := app.Repos.All(cmd.Context())
			if err != nil {
				return err
			}
			if enabledOnly {
				kept := all[:0]
				for _, r := range all {
					if r.InUse {
						kept = append(kept, r)
					}
				}
				all = kept
			}
			return printRepos(cmd.OutOrStdout(), deps.Output, all)
		},
	}

	cmd.Flags().BoolVar(&enabledOnly, "enabled", false, "only show repositories in use")
	return cmd
}
