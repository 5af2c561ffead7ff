package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/packdesk/internal/config"
	"github.com/Faultbox/packdesk/internal/errs"
	"github.com/Faultbox/packdesk/pkg/archive"
	"github.com/Faultbox/packdesk/pkg/pack"
)

// run executes the CLI with a config file at cfgPath and returns stdout.
func run(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := root.Execute()
	return out.String(), err
}

func writeConfig(t *testing.T, configure func(*config.Config)) string {
	t.Helper()
	cfg := config.Default()
	cfg.Logging.Level = "error"
	if configure != nil {
		configure(cfg)
	}
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, cfg.SaveTo(path))
	return path
}

func lines(s string) []string {
	return strings.Split(strings.TrimSpace(s), "\n")
}

func TestEditPackFile(t *testing.T) {
	cfgPath := writeConfig(t, nil)
	dir := t.TempDir()
	packPath := filepath.Join(dir, "a.pack")

	out, err := run(t, cfgPath, "new", packPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Created "+packPath)
	assert.Contains(t, out, "(warhammer_2)")
	assert.FileExists(t, packPath)

	out, err = run(t, cfgPath, "add-entry", packPath, "text", "script/start.lua")
	require.NoError(t, err)
	assert.Equal(t, "script/start.lua\n", out)

	out, err = run(t, cfgPath, "add-entry", packPath, "loc", "names", "--folder", "script")
	require.NoError(t, err)
	assert.Equal(t, "script/names.loc\n", out)

	out, err = run(t, cfgPath, "add-entry", packPath, "table", "my_units", "--table", "units_tables")
	require.NoError(t, err)
	assert.Equal(t, "db/units_tables/my_units\n", out)

	out, err = run(t, cfgPath, "list", packPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"db/units_tables/my_units", "script/names.loc", "script/start.lua"}, lines(out))

	out, err = run(t, cfgPath, "list", packPath, "*.lua")
	require.NoError(t, err)
	assert.Equal(t, []string{"script/start.lua"}, lines(out))

	out, err = run(t, cfgPath, "ls", packPath, "-n", "1")
	require.NoError(t, err)
	assert.Len(t, lines(out), 1)

	out, err = run(t, cfgPath, "info", packPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Profile:     warhammer_2")
	assert.Contains(t, out, "Entries:     3")
	assert.Contains(t, out, "table")

	out, err = run(t, cfgPath, "view", packPath, "script/names.loc")
	require.NoError(t, err)
	assert.Equal(t, "script/names.loc: loc, 0 rows\n", out)

	out, err = run(t, cfgPath, "check", packPath, "script/start.lua")
	require.NoError(t, err)
	assert.Equal(t, "script/start.lua: ok\n", out)

	_, err = run(t, cfgPath, "notes", packPath, "--set", "release notes")
	require.NoError(t, err)
	out, err = run(t, cfgPath, "notes", packPath)
	require.NoError(t, err)
	assert.Equal(t, "release notes", out)

	outDir := filepath.Join(dir, "out")
	out, err = run(t, cfgPath, "extract", packPath, "script/*", outDir)
	require.NoError(t, err)
	assert.Len(t, lines(out), 2)
	assert.FileExists(t, filepath.Join(outDir, "script", "start.lua"))
	assert.FileExists(t, filepath.Join(outDir, "script", "names.loc"))

	_, err = run(t, cfgPath, "x", packPath, "db/units_tables/my_units", outDir)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(outDir, "my_units"))
}

func TestCommandErrors(t *testing.T) {
	cfgPath := writeConfig(t, nil)
	packPath := filepath.Join(t.TempDir(), "a.pack")
	_, err := run(t, cfgPath, "new", packPath)
	require.NoError(t, err)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown kind", []string{"add-entry", packPath, "sound", "a"}, `unknown entry kind "sound"`},
		{"missing folder", []string{"add-entry", packPath, "text", "a", "--folder", "nope"}, "folder not found: nope"},
		{"missing entry", []string{"view", packPath, "nope.txt"}, "entry not found: nope.txt"},
		{"missing pack", []string{"info", filepath.Join(t.TempDir(), "none.pack")}, "opening"},
		{"bad mymod ref", []string{"mymod", "install", "warhammer_2"}, "expected <profile>/<name>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, cfgPath, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCheckReportsProblems(t *testing.T) {
	cfgPath := writeConfig(t, nil)
	packPath := filepath.Join(t.TempDir(), "a.pack")
	doc := pack.New()
	require.NoError(t, doc.Add(archive.Parse("script/bad.lua"), []byte("local x = \n")))
	require.NoError(t, doc.SaveAs(packPath))

	out, err := run(t, cfgPath, "check", packPath, "script/bad.lua")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 problem(s)")
	assert.True(t, strings.HasPrefix(out, "script/bad.lua:1:"), out)

	// The profile comes from the pack header, not the default profile.
	_, err = run(t, cfgPath, "--game", "empire", "check", packPath, "script/bad.lua")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 problem(s)")
}

func TestMyModCommands(t *testing.T) {
	base := t.TempDir()
	data := t.TempDir()
	cfgPath := writeConfig(t, func(c *config.Config) {
		c.Paths.MyModsBasePath = base
		c.SetGamePath("attila", data)
	})

	out, err := run(t, cfgPath, "mymod", "new", "my_mod", "--profile", "attila")
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(base, "attila", "my_mod.pack"))

	out, err = run(t, cfgPath, "mymod", "list")
	require.NoError(t, err)
	assert.Equal(t, "attila/my_mod.pack\n", out)

	out, err = run(t, cfgPath, "mymod", "install", "attila/my_mod")
	require.NoError(t, err)
	assert.Equal(t, "Installed attila/my_mod\n", out)
	assert.FileExists(t, filepath.Join(data, "my_mod.pack"))

	_, err = run(t, cfgPath, "mymod", "uninstall", "attila/my_mod.pack")
	require.NoError(t, err)
	assert.NoFileExists(t, filepath.Join(data, "my_mod.pack"))

	_, err = run(t, cfgPath, "mymod", "uninstall", "attila/my_mod")
	assert.True(t, errs.Is(err, errs.MyModNotInstalled))

	_, err = run(t, cfgPath, "mymod", "delete", "attila/my_mod")
	require.NoError(t, err)
	_, statErr := os.Stat(filepath.Join(base, "attila", "my_mod.pack"))
	assert.True(t, os.IsNotExist(statErr))

	_, err = run(t, cfgPath, "mymod", "delete", "attila/my_mod")
	assert.True(t, errs.Is(err, errs.MyModPackFileDoesntExist))

	// The --mymods flag overrides the configured base folder.
	other := t.TempDir()
	_, err = run(t, cfgPath, "--mymods", other, "mymod", "new", "x", "--profile", "rome_2")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(other, "rome_2", "x.pack"))
}

func TestDataCommands(t *testing.T) {
	data := t.TempDir()
	cfgPath := writeConfig(t, func(c *config.Config) { c.SetGamePath("warhammer_2", data) })

	doc := pack.New()
	require.NoError(t, doc.Add(archive.Parse("script/campaign/start.lua"), []byte("local x = 1\n")))
	require.NoError(t, doc.SaveAs(filepath.Join(data, "mod.pack")))
	require.NoError(t, pack.New().SaveAs(filepath.Join(data, "data.pack")))

	out, err := run(t, cfgPath, "data", "list")
	require.NoError(t, err)
	assert.Equal(t, []string{"data.pack", "mod.pack"}, lines(out))

	out, err = run(t, cfgPath, "data", "open", "mod")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(data, "mod.pack") + " (warhammer_2)",
		"  script/campaign/start.lua",
	}, lines(out))

	_, err = run(t, cfgPath, "data", "open", "missing.pack")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no pack named missing.pack")

	_, err = run(t, cfgPath, "--game", "attila", "data", "ls")
	assert.True(t, errs.Is(err, errs.GamePathNotConfigured))
}
