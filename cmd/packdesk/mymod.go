package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Faultbox/packdesk/internal/config"
	"github.com/Faultbox/packdesk/internal/errs"
	"github.com/Faultbox/packdesk/internal/mymod"
	"github.com/Faultbox/packdesk/internal/workbench"
)

func newMyModCmd(conf func() *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mymod",
		Short: "Manage MyMods",
		Long: `Manage MyMods: packs kept under <mymods>/<profile>/<name>.pack with an
assets folder next to them, installable into the game's data folder.`,
	}
	cmd.AddCommand(
		newMyModListCmd(conf),
		newMyModNewCmd(conf),
		newMyModDeleteCmd(conf),
		newMyModInstallCmd(conf, true),
		newMyModInstallCmd(conf, false),
	)
	return cmd
}

func newMyModListCmd(conf func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List MyMods of every editable profile",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(conf(), workbench.Cancel)
			if err != nil {
				return err
			}
			defer a.close()

			for _, e := range a.sess.MyModMenu() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s/%s\n", e.Folder, e.Name)
			}
			return nil
		},
	}
}

func newMyModNewCmd(conf func() *config.Config) *cobra.Command {
	var profileID string

	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Create a MyMod",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := conf()
			if profileID == "" {
				profileID = cfg.UI.DefaultProfile
			}
			a, err := openApp(cfg, workbench.Cancel)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.sess.NewMyMod(cmd.Context(), args[0], profileID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", a.sess.Document().Path)
			return nil
		},
	}

	cmd.Flags().StringVar(&profileID, "profile", "", "Profile of the MyMod (default: the default profile)")
	return cmd
}

func newMyModDeleteCmd(conf func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <profile>/<name>",
		Short: "Delete a MyMod and its assets folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openMyMod(ctx, conf(), args[0])
			if err != nil {
				return err
			}
			defer a.close()

			warnings, err := a.sess.DeleteMyMod(ctx)
			if err != nil {
				return err
			}
			for _, w := range warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", w)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}

func newMyModInstallCmd(conf func() *config.Config, install bool) *cobra.Command {
	use, short, done := "install", "Copy a MyMod into the game's data folder", "Installed"
	if !install {
		use, short, done = "uninstall", "Remove a MyMod from the game's data folder", "Uninstalled"
	}

	return &cobra.Command{
		Use:   use + " <profile>/<name>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openMyMod(cmd.Context(), conf(), args[0])
			if err != nil {
				return err
			}
			defer a.close()

			if install {
				err = a.sess.InstallMyMod()
			} else {
				err = a.sess.UninstallMyMod()
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", done, args[0])
			return nil
		},
	}
}

// openMyMod starts a session editing the MyMod named by ref ("profile/name",
// with or without the .pack extension).
func openMyMod(ctx context.Context, cfg *config.Config, ref string) (*app, error) {
	folder, name, ok := strings.Cut(ref, "/")
	if !ok || folder == "" || name == "" {
		return nil, fmt.Errorf("expected <profile>/<name>, got %q", ref)
	}
	if !strings.HasSuffix(name, mymod.Extension) {
		name += mymod.Extension
	}

	a, err := openApp(cfg, workbench.Cancel)
	if err != nil {
		return nil, err
	}
	for _, e := range a.sess.MyModMenu() {
		if e.Folder == folder && e.Name == name {
			if err := a.sess.OpenMyMod(ctx, e); err != nil {
				a.stop()
				return nil, err
			}
			return a, nil
		}
	}
	a.stop()
	return nil, errs.Newf(errs.MyModPackFileDoesntExist, "%s/%s", folder, name)
}
