package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Faultbox/packdesk/internal/config"
	"github.com/Faultbox/packdesk/internal/editor"
	"github.com/Faultbox/packdesk/internal/logger"
	"github.com/Faultbox/packdesk/internal/workbench"
	"github.com/Faultbox/packdesk/pkg/archive"
)

// mainSlot is the slot headless commands open views in.
const mainSlot = 0

func newInfoCmd(conf func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "info <file.pack>",
		Short: "Show PackFile information",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openPack(ctx, conf(), args[0], workbench.Cancel)
			if err != nil {
				return err
			}
			defer a.close()

			doc := a.sess.Document()
			files := a.tree.Files()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "PackFile:    %s\n", doc.Path)
			fmt.Fprintf(out, "Profile:     %s\n", a.sess.Profile().ID)
			fmt.Fprintf(out, "Version:     %s\n", doc.Version)
			fmt.Fprintf(out, "Type:        %s\n", doc.Type)
			fmt.Fprintf(out, "Flags:       %s\n", doc.Flags)
			fmt.Fprintf(out, "Compression: %s\n", doc.Compression)
			fmt.Fprintf(out, "Entries:     %d\n", len(files))

			kindCount := make(map[archive.Kind]int)
			for _, f := range files {
				kindCount[archive.KindOf(f)]++
			}
			type kindStat struct {
				kind  archive.Kind
				count int
			}
			var stats []kindStat
			for k, n := range kindCount {
				stats = append(stats, kindStat{k, n})
			}
			sort.Slice(stats, func(i, j int) bool {
				if stats[i].count != stats[j].count {
					return stats[i].count > stats[j].count
				}
				return stats[i].kind < stats[j].kind
			})

			if len(stats) > 0 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, "Entries by kind:")
			}
			for _, s := range stats {
				fmt.Fprintf(out, "  %-12s %d\n", s.kind, s.count)
			}
			return nil
		},
	}
}

func newListCmd(conf func() *config.Config) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:     "list <file.pack> [pattern]",
		Aliases: []string{"ls"},
		Short:   "List entries, optionally filtered by a glob or fuzzy pattern",
		Long: `List the entries of a PackFile.

A pattern containing * or ? is matched as a glob against entry names and
paths; any other pattern is a fuzzy search, best matches first.

Examples:
  packdesk list data.pack
  packdesk list data.pack "*.lua"
  packdesk list data.pack unitstab`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openPack(ctx, conf(), args[0], workbench.Cancel)
			if err != nil {
				return err
			}
			defer a.close()

			files := a.tree.Files()
			if len(args) > 1 {
				files = a.sess.SetSearch(args[1])
			}

			out := cmd.OutOrStdout()
			for i, f := range files {
				if limit > 0 && i >= limit {
					break
				}
				fmt.Fprintln(out, f)
			}
			if len(args) > 1 {
				fmt.Fprintf(cmd.ErrOrStderr(), "\n(%d entries matched)\n", len(files))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Limit output to N entries (0 = all)")
	return cmd
}

func newExtractCmd(conf func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:     "extract <file.pack> <entry|pattern> [output_dir]",
		Aliases: []string{"x"},
		Short:   "Extract entries to a directory",
		Args:    cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openPack(ctx, conf(), args[0], workbench.Cancel)
			if err != nil {
				return err
			}
			defer a.close()

			outputDir := "."
			if len(args) > 2 {
				outputDir = args[2]
			}

			// Patterns keep the folder structure below outputDir.
			if strings.ContainsAny(args[1], "*?") {
				matches := a.tree.Search(args[1])
				for _, p := range matches {
					dst := filepath.Join(append([]string{outputDir}, p...)...)
					if err := extractEntry(ctx, a, p, dst); err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), dst)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "\nExtracted %d entries\n", len(matches))
				return nil
			}

			p := archive.Parse(args[1])
			dst := filepath.Join(outputDir, p.Base())
			if err := extractEntry(ctx, a, p, dst); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), dst)
			return nil
		},
	}
}

func extractEntry(ctx context.Context, a *app, p archive.Path, dst string) error {
	data, err := a.read(ctx, p)
	if err != nil {
		return fmt.Errorf("reading %s: %w", p, err)
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	if err := os.WriteFile(dst, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", dst, err)
	}
	return nil
}

func newViewCmd(conf func() *config.Config) *cobra.Command {
	var showText bool

	cmd := &cobra.Command{
		Use:   "view <file.pack> <entry>",
		Short: "Decode an entry and describe it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openPack(ctx, conf(), args[0], workbench.Cancel)
			if err != nil {
				return err
			}
			defer a.close()

			v, err := openEntry(ctx, a, args[1])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %s\n", v.Path(), v.Summary())
			if tv, ok := v.(*editor.TextView); ok && showText {
				fmt.Fprintln(out)
				fmt.Fprint(out, tv.Text)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showText, "text", false, "Print the content of text entries")
	return cmd
}

// openEntry selects entry in the tree and opens it in the main slot.
func openEntry(ctx context.Context, a *app, entry string) (editor.View, error) {
	p := archive.Parse(entry)
	if _, ok := a.tree.Find(p); !ok {
		return nil, fmt.Errorf("entry not found: %s", entry)
	}
	a.tree.Select(p)
	if err := a.sess.OpenEntryView(ctx, mainSlot); err != nil {
		return nil, err
	}
	v, ok := a.win.View(mainSlot)
	if !ok {
		return nil, fmt.Errorf("%s cannot be viewed", entry)
	}
	return v, nil
}

func newNewCmd(conf func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "new <file.pack>",
		Short: "Create an empty PackFile for the default profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			dest, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			a, err := openApp(conf(), workbench.FixedDestination(dest))
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.sess.NewDocument(ctx); err != nil {
				return err
			}
			// An untitled document has no file yet, so this asks for one.
			if err := a.sess.SaveDocument(ctx, false); err != nil {
				return err
			}
			logger.Info("packfile created")
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%s)\n", a.sess.Document().Path, a.sess.Profile().ID)
			return nil
		},
	}
}

func newAddEntryCmd(conf func() *config.Config) *cobra.Command {
	var (
		folder string
		table  string
	)

	cmd := &cobra.Command{
		Use:   "add-entry <file.pack> <table|loc|text> <name>",
		Short: "Create an empty entry and save the PackFile",
		Long: `Create an empty entry and save the PackFile in place.

Tables are created under db/<table>/ and need --table. Loc and text entries
are created below --folder (the root by default); "/" in the name creates
nested folders.

Examples:
  packdesk add-entry mod.pack table my_units --table units_tables
  packdesk add-entry mod.pack text campaign/start.lua --folder script`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			kind, ok := archive.ParseKind(args[1])
			if !ok {
				return fmt.Errorf("unknown entry kind %q", args[1])
			}

			a, err := openPack(ctx, conf(), args[0], workbench.Cancel)
			if err != nil {
				return err
			}
			defer a.close()

			dir := archive.Parse(folder)
			if _, ok := a.tree.Find(dir); !ok {
				return fmt.Errorf("folder not found: %s", folder)
			}
			a.tree.Select(dir)

			created, err := a.sess.CreateEntry(ctx, kind, args[2], table)
			if err != nil {
				return err
			}
			if created == nil {
				return fmt.Errorf("%s is not a folder", folder)
			}
			if err := a.sess.SaveDocument(ctx, false); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), created)
			return nil
		},
	}

	cmd.Flags().StringVar(&folder, "folder", "", "Folder to create loc and text entries in")
	cmd.Flags().StringVar(&table, "table", "", "Table the new db entry belongs to")
	return cmd
}

func newNotesCmd(conf func() *config.Config) *cobra.Command {
	var set string

	cmd := &cobra.Command{
		Use:   "notes <file.pack>",
		Short: "Print or replace the PackFile notes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openPack(ctx, conf(), args[0], workbench.Cancel)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.sess.OpenNotes(ctx, mainSlot); err != nil {
				return err
			}

			if !cmd.Flags().Changed("set") {
				v, _ := a.win.View(mainSlot)
				fmt.Fprint(cmd.OutOrStdout(), v.(*editor.NotesView).Text)
				return nil
			}

			if err := a.sess.SaveText(ctx, mainSlot, set); err != nil {
				return err
			}
			return a.sess.SaveDocument(ctx, false)
		},
	}

	cmd.Flags().StringVar(&set, "set", "", "Replace the notes and save")
	return cmd
}

func newCheckCmd(conf func() *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "check <file.pack> <script.lua>",
		Short: "Check a Lua script entry for syntax errors",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openPack(ctx, conf(), args[0], workbench.Cancel)
			if err != nil {
				return err
			}
			defer a.close()

			if _, err := openEntry(ctx, a, args[1]); err != nil {
				return err
			}
			lines, err := a.sess.CheckScript(ctx, mainSlot)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, l := range lines {
				fmt.Fprintln(out, l)
			}
			if len(lines) > 0 {
				return fmt.Errorf("%s: %d problem(s)", args[1], len(lines))
			}
			fmt.Fprintf(out, "%s: ok\n", args[1])
			return nil
		},
	}
}
