package cli

import (
	"fmt"

	"github.com/dmitrijs2005/reposhelf/internal/models"
	"github.com/spf13/cobra"
)

func NewAddCmd(deps *Deps) *cobra.Command {
	var (
		name        string
		description string
		pubkey      string
		fp          string
		priority    int
		disabled    bool
	)

	cmd := &cobra.Command{
		Use:   "add ADDRESS",
		Short: "add a repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := deps.App(cmd.Context())
			if err != nil {
				return err
			}

			values := models.NewValues().With(models.ColAddress, args[0])
			flags := cmd.Flags()
			if flags.Changed("name") {
				values = values.With(models.ColName, name)
			}
			if flags.Changed("description") {
				values = values.With(models.ColDescription, description)
			}
			if flags.Changed("pubkey") {
				values = values.With(models.ColPublicKey, pubkey)
			}
			if flags.Changed("fingerprint") {
				values = values.With(models.ColFingerprint, fp)
			}
			if flags.Changed("priority") {
				values = values.With(models.ColPriority, priority)
			}
			if disabled {
				values = values.With(models.ColInUse, false)
			}

			id, err := app.Repos.Insert(cmd.Context(), values)
			if err != nil {
				return err
			}
			if deps.Output != OutputTable {
				r, err := app.Repos.FindByID(cmd.Context(), id)
				if err != nil {
					return err
				}
				return printRepo(cmd.OutOrStdout(), deps.Output, *r)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "added repos/%d\n", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name (derived from the address when omitted)")
	cmd.Flags().StringVar(&description, "description", "", "description")
	cmd.Flags().StringVar(&pubkey, "pubkey", "", "signing certificate, hex encoded")
	cmd.Flags().StringVar(&fp, "fingerprint", "", "expected certificate fingerprint")
	cmd.Flags().IntVar(&priority, "priority", 10, "priority, lower wins")
	cmd.Flags().BoolVar(&disabled, "disabled", false, "add the repository disabled")
	return cmd
}
