package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/reposhelf/internal/config"
	"github.com/dmitrijs2005/reposhelf/internal/flagx"
	"github.com/spf13/cobra"
)

// Deps is shared by every command. The App is opened on first use so that
// commands such as version never touch the database.
type Deps struct {
	Output string

	open func(ctx context.Context) (*App, error)
	app  *App
}

// NewDeps returns Deps that open an App from cfg on demand.
func NewDeps(cfg *config.Config, logOut io.Writer) *Deps {
	return &Deps{open: func(ctx context.Context) (*App, error) {
		return NewApp(ctx, cfg, logOut)
	}}
}

// DepsFor wraps an App that is already open.
func DepsFor(app *App) *Deps {
	return &Deps{app: app}
}

func (d *Deps) App(ctx context.Context) (*App, error) {
	if d.app != nil {
		return d.app, nil
	}
	if d.open == nil {
		return nil, errors.New("no application configured")
	}
	app, err := d.open(ctx)
	if err != nil {
		return nil, err
	}
	d.app = app
	return app, nil
}

// Close releases the App if one was opened.
func (d *Deps) Close() error {
	if d.app == nil {
		return nil
	}
	return d.app.Close()
}

func NewRootCmd(deps *Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "repoctl",
		Short:         "manage package repository records",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return validOutput(deps.Output)
		},
	}

	cmd.PersistentFlags().StringVarP(&deps.Output, "output", "o", OutputTable, "output format: table, json or yaml")

	cmd.AddCommand(
		NewListCmd(deps),
		NewShowCmd(deps),
		NewAddCmd(deps),
		NewSetCmd(deps),
		NewEnableCmd(deps),
		NewDisableCmd(deps),
		NewRemoveCmd(deps),
		NewPurgeCmd(deps),
		NewWatchCmd(deps),
		NewVersionCmd(),
	)
	return cmd
}

// Run executes repoctl with args (without the program name). Process-level
// configuration flags may appear anywhere; the rest goes to cobra.
// The returned code is suitable for os.Exit.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer) (int, error) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgArgs, cmdArgs := flagx.SplitArgs(args, config.FlagNames)
	cfg, err := config.LoadConfig(cfgArgs)
	if err != nil {
		return 2, fmt.Errorf("config: %w", err)
	}

	deps := NewDeps(cfg, stderr)
	defer func() { _ = deps.Close() }()

	cmd := NewRootCmd(deps)
	cmd.SetArgs(cmdArgs)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) ||
			errors.Is(err, context.DeadlineExceeded) {
			return 130, err
		}
		return 1, err
	}
	return 0, nil
}
