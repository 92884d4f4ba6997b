package cli

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/reposhelf/internal/models"
	"github.com/spf13/cobra"
)

func NewSetCmd(deps *Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "set ID KEY=VALUE...",
		Short: "change fields of a repository",
		Long: "Change fields of a repository. Keys are column names such as address, name,\n" +
			"priority or pubkey. The value null clears a field.",
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			values, err := parseAssignments(args[1:])
			if err != nil {
				return err
			}
			return update(cmd, deps, id, values)
		},
	}
}

func NewEnableCmd(deps *Deps) *cobra.Command {
	return toggleCmd(deps, "enable", "start using a repository", true)
}

func NewDisableCmd(deps *Deps) *cobra.Command {
	return toggleCmd(deps, "disable", "stop using a repository", false)
}

func toggleCmd(deps *Deps, use, short string, inUse bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " ID",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return update(cmd, deps, id, models.NewValues().With(models.ColInUse, inUse))
		},
	}
}

func update(cmd *cobra.Command, deps *Deps, id int64, values models.Values) error {
	app, err := deps.App(cmd.Context())
	if err != nil {
		return err
	}

	r, err := app.Repos.FindByID(cmd.Context(), id)
	if err != nil {
		return err
	}
	if _, err := app.Repos.Update(cmd.Context(), r, values); err != nil {
		return err
	}
	return printRepo(cmd.OutOrStdout(), deps.Output, *r)
}

// parseAssignments turns key=value arguments into a field-set.
func parseAssignments(args []string) (models.Values, error) {
	values := models.NewValues()
	for _, a := range args {
		key, val, ok := strings.Cut(a, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return models.Values{}, fmt.Errorf("expected KEY=VALUE, got %q", a)
		}
		if val == "null" {
			values = values.With(key, nil)
			continue
		}
		values = values.With(key, val)
	}
	return values, nil
}
