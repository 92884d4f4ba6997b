package cli

import (
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/reposhelf/internal/models"
	"github.com/dmitrijs2005/reposhelf/internal/repos"
	"github.com/spf13/cobra"
)

func NewShowCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID|ADDRESS",
		Short: "show one repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := deps.App(cmd.Context())
			if err != nil {
				return err
			}

			var r *models.Repo
			if id, perr := parseID(args[0]); perr == nil {
				r, err = app.Repos.FindByID(cmd.Context(), id)
			} else {
				r, err = app.Repos.FindByAddress(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}
			return printRepo(cmd.OutOrStdout(), deps.Output, *r)
		},
	}
}

// parseID accepts a bare id or a "repos/{id}" address.
func parseID(s string) (int64, error) {
	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		return id, nil
	}
	t, err := repos.ParseTarget(s)
	if err != nil {
		return 0, err
	}
	if !t.IsSingle() {
		return 0, fmt.Errorf("%q does not name a single repository", s)
	}
	return t.ID(), nil
}
