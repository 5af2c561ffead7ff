// Package mymod manages MyMods on disk: user packs stored as
// <base>/<profile>/<name>.pack, each with an assets folder
// <base>/<profile>/<name>/ next to it.
package mymod

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/packdesk/internal/errs"
)

// Extension is the file extension of MyMod packs.
const Extension = ".pack"

// Entry is one MyMod found on disk.
type Entry struct {
	Folder string // Profile folder
	Name   string // Pack file name, with extension
	Path   string
}

// Store operates on the MyMods under one base folder.
type Store struct {
	base string
	log  *zap.Logger
}

// NewStore creates a store rooted at base. An empty base means MyMods are
// not configured.
func NewStore(base string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{base: base, log: log}
}

// Base returns the configured base folder.
func (s *Store) Base() string {
	return s.base
}

// Configured reports whether the base folder is set and exists.
func (s *Store) Configured() bool {
	if s.base == "" {
		return false
	}
	info, err := os.Stat(s.base)
	return err == nil && info.IsDir()
}

// PackPath returns where the pack of a MyMod lives.
func (s *Store) PackPath(folder, name string) string {
	return filepath.Join(s.base, folder, name)
}

// AssetsPath returns the assets folder of a MyMod pack name.
func (s *Store) AssetsPath(folder, name string) string {
	return filepath.Join(s.base, folder, strings.TrimSuffix(name, filepath.Ext(name)))
}

// Check reports whether a MyMod named modName can be created for folder:
// the name must be a single path segment and no pack may exist under it.
func (s *Store) Check(folder, modName string) error {
	if s.base == "" {
		return errs.New(errs.MyModPathNotConfigured, "")
	}
	if modName == "" {
		return errs.New(errs.EmptyInput, "mymod name")
	}
	if modName == "." || strings.ContainsAny(modName, `/\`) || strings.Contains(modName, "..") {
		return errs.Newf(errs.MyModInvalidName, "%q", modName)
	}

	packPath := s.PackPath(folder, modName+Extension)
	if _, err := os.Stat(packPath); err == nil {
		return errs.WithPaths(errs.FileAlreadyExists, nil, packPath)
	}
	return nil
}

// Create makes the profile and assets folders of a new MyMod and returns
// the path its pack should be saved to. An existing MyMod is never touched.
func (s *Store) Create(folder, modName string) (string, error) {
	if err := s.Check(folder, modName); err != nil {
		return "", err
	}

	gameDir := filepath.Join(s.base, folder)
	if err := os.MkdirAll(gameDir, 0755); err != nil {
		return "", errs.WithPaths(errs.IOCreateAssetFolder, err, gameDir)
	}
	assets := filepath.Join(gameDir, modName)
	if err := os.MkdirAll(assets, 0755); err != nil {
		return "", errs.WithPaths(errs.IOCreateNestedAssetFolder, err, assets)
	}

	s.log.Info("created mymod folders", zap.String("folder", folder), zap.String("name", modName))
	return filepath.Join(gameDir, modName+Extension), nil
}

// Delete removes a MyMod pack and its assets folder. Problems with the assets
// folder do not fail the deletion; they are returned as warnings.
func (s *Store) Delete(folder, name string) (errs.Warnings, error) {
	if s.base == "" {
		return nil, errs.New(errs.MyModPathNotConfigured, "")
	}

	packPath := s.PackPath(folder, name)
	if !isFile(packPath) {
		return nil, errs.WithPaths(errs.MyModPackFileDoesntExist, nil, packPath)
	}
	if err := os.Remove(packPath); err != nil {
		return nil, errs.WithPaths(errs.IOGenericDelete, err, packPath)
	}

	var warnings errs.Warnings
	assets := s.AssetsPath(folder, name)
	if !isDir(assets) {
		warnings = append(warnings, errs.WithPaths(errs.MyModPackFileDeletedFolderNotFound, nil, assets))
	} else if err := os.RemoveAll(assets); err != nil {
		warnings = append(warnings, errs.WithPaths(errs.IOGenericDelete, err, assets))
	}

	for _, w := range warnings {
		s.log.Warn("mymod deleted with problems", zap.Error(w))
	}
	s.log.Info("deleted mymod", zap.String("folder", folder), zap.String("name", name))
	return warnings, nil
}

// Install copies a MyMod pack into a game data folder.
func (s *Store) Install(folder, name, dataPath string) error {
	if s.base == "" {
		return errs.New(errs.MyModPathNotConfigured, "")
	}
	if dataPath == "" {
		return errs.New(errs.GamePathNotConfigured, "")
	}

	src := s.PackPath(folder, name)
	if !isFile(src) {
		return errs.WithPaths(errs.MyModPackFileDoesntExist, nil, src)
	}
	if !isDir(dataPath) {
		return errs.WithPaths(errs.MyModInstallFolderDoesntExists, nil, dataPath)
	}

	dst := filepath.Join(dataPath, name)
	if err := copyFile(src, dst); err != nil {
		return errs.WithPaths(errs.IOGenericCopy, err, dst)
	}
	s.log.Info("installed mymod", zap.String("name", name), zap.String("dest", dst))
	return nil
}

// Uninstall removes a MyMod pack from a game data folder.
func (s *Store) Uninstall(name, dataPath string) error {
	if dataPath == "" {
		return errs.New(errs.GamePathNotConfigured, "")
	}

	installed := filepath.Join(dataPath, name)
	if !isFile(installed) {
		return errs.WithPaths(errs.MyModNotInstalled, nil, installed)
	}
	if err := os.Remove(installed); err != nil {
		return errs.WithPaths(errs.IOGenericDelete, err, installed)
	}
	s.log.Info("uninstalled mymod", zap.String("name", name))
	return nil
}

// List returns the MyMods of the given profile folders, sorted by folder
// then name. Folders that do not exist are skipped.
func (s *Store) List(folders []string) []Entry {
	if !s.Configured() {
		return nil
	}

	var entries []Entry
	for _, folder := range folders {
		entries = append(entries, Packs(filepath.Join(s.base, folder), folder)...)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Folder != entries[j].Folder {
			return entries[i].Folder < entries[j].Folder
		}
		return entries[i].Name < entries[j].Name
	})
	return entries
}

// Packs lists the pack files directly inside dir, sorted by name and tagged
// with folder. A missing or unreadable dir lists nothing.
func Packs(dir, folder string) []Entry {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var entries []Entry
	for _, f := range files {
		if f.IsDir() || filepath.Ext(f.Name()) != Extension {
			continue
		}
		entries = append(entries, Entry{Folder: folder, Name: f.Name(), Path: filepath.Join(dir, f.Name())})
	}
	return entries
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copying %s: %w", src, err)
	}
	return out.Close()
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
