// Package cli holds the cultist command tree.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tatianab/orb-cult/internal/config"
)

// Version is set at build time via -ldflags.
var Version = "dev"

type rootFlags struct {
	storage string
	saveDir string
}

// NewRootCmd returns the root command with every subcommand attached.
func NewRootCmd() *cobra.Command {
	var flags rootFlags
	root := &cobra.Command{
		Use:   "cultist",
		Short: "Tend the orb: a progression engine for a cult of chat users",
		Long: "cultist runs the orb cult engine, either as a console for one player\n" +
			"or as an HTTP and websocket service for chat dispatchers.",
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		SilenceUsage: true,
		Version:      Version,
	}
	root.PersistentFlags().StringVar(&flags.storage, "storage", "", "storage backend: yaml, badger, sqlite or memory (overrides CULT_STORAGE)")
	root.PersistentFlags().StringVar(&flags.saveDir, "save-dir", "", "where records are kept (overrides CULT_SAVE_DIR)")

	root.AddCommand(newPlayCmd(&flags))
	root.AddCommand(newServeCmd(&flags))
	root.AddCommand(newInspectCmd(&flags))
	root.AddCommand(newVersionCmd())
	return root
}

// loadConfig reads the environment and applies flag overrides.
func (f *rootFlags) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if f.storage != "" {
		cfg.Storage = f.storage
	}
	if f.saveDir != "" {
		cfg.SaveDir = f.saveDir
	}
	return cfg, cfg.Validate()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "cultist "+Version)
		},
	}
}
