package cli

import (
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tatianab/orb-cult/internal/app"
	"github.com/tatianab/orb-cult/internal/logging"
)

func newInspectCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <cultist-id>",
		Short: "Print a cultist's record and any live adventure",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.loadConfig()
			if err != nil {
				return err
			}
			a, err := app.New(cmd.Context(), cfg, logging.Discard())
			if err != nil {
				return err
			}
			defer a.Close()

			p, err := a.Store.Cultist(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			sess, err := a.Store.Session(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := struct {
				Profile   any `yaml:"profile"`
				Adventure any `yaml:"adventure,omitempty"`
			}{Profile: p}
			if sess != nil {
				out.Adventure = sess
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(out); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}
