// packdesk is a headless front end for editing Total War PackFiles.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Faultbox/packdesk/internal/config"
	"github.com/Faultbox/packdesk/internal/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		overrides config.Overrides
		cfg       *config.Config
	)

	root := &cobra.Command{
		Use:           "packdesk",
		Short:         "Inspect and edit Total War PackFiles",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(overrides)
			if err != nil {
				return err
			}
			if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
				return fmt.Errorf("initializing logger: %w", err)
			}
			logger.Debug("packdesk starting")
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&overrides.ConfigPath, "config", "", "Config file (default: search standard locations)")
	flags.BoolVar(&overrides.Debug, "debug", false, "Enable debug logging")
	flags.StringVar(&overrides.Profile, "game", "", "Default game profile id")
	flags.StringVar(&overrides.MyModsPath, "mymods", "", "MyMods base folder")

	conf := func() *config.Config { return cfg }
	root.AddCommand(
		newInfoCmd(conf),
		newListCmd(conf),
		newExtractCmd(conf),
		newViewCmd(conf),
		newNewCmd(conf),
		newAddEntryCmd(conf),
		newNotesCmd(conf),
		newCheckCmd(conf),
		newMyModCmd(conf),
		newDataCmd(conf),
	)
	return root
}
