package cli

import (
	"github.com/spf13/cobra"

	"github.com/tatianab/orb-cult/internal/app"
	"github.com/tatianab/orb-cult/internal/logging"
	"github.com/tatianab/orb-cult/internal/tui"
)

func newPlayCmd(flags *rootFlags) *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Talk to the orb from this terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := flags.loadConfig()
			if err != nil {
				return err
			}
			// The console owns the terminal, so logs go nowhere.
			a, err := app.New(cmd.Context(), cfg, logging.Discard())
			if err != nil {
				return err
			}
			defer a.Close()
			return tui.Run(a.Engine, name)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "cultist name; prompted for when empty")
	return cmd
}
