package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Faultbox/packdesk/internal/config"
	"github.com/Faultbox/packdesk/internal/mymod"
	"github.com/Faultbox/packdesk/internal/workbench"
)

func newDataCmd(conf func() *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "data",
		Short: "Browse the packs of a game's data folder",
		Long: `Browse the packs of the default profile's data folder, as configured
under paths.games. Use --game to pick another profile.`,
	}
	cmd.AddCommand(newDataListCmd(conf), newDataOpenCmd(conf))
	return cmd
}

func newDataListCmd(conf func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the packs in the data folder",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(conf(), workbench.Cancel)
			if err != nil {
				return err
			}
			defer a.close()

			packs, err := a.sess.DataPacks()
			if err != nil {
				return err
			}
			for _, e := range packs {
				fmt.Fprintln(cmd.OutOrStdout(), e.Name)
			}
			return nil
		},
	}
}

func newDataOpenCmd(conf func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "open <name>",
		Short: "Open a data folder pack and list its entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(conf(), workbench.Cancel)
			if err != nil {
				return err
			}
			defer a.close()

			packs, err := a.sess.DataPacks()
			if err != nil {
				return err
			}
			name := args[0]
			if !strings.HasSuffix(name, mymod.Extension) {
				name += mymod.Extension
			}
			for _, e := range packs {
				if e.Name != name {
					continue
				}
				if err := a.sess.OpenDataPack(cmd.Context(), e); err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s (%s)\n", a.sess.Document().Path, a.sess.Profile().ID)
				for _, f := range a.tree.Files() {
					fmt.Fprintf(out, "  %s\n", f)
				}
				return nil
			}
			return fmt.Errorf("no pack named %s in the %s data folder", name, a.sess.Profile().ID)
		},
	}
}
