// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package browser

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Entry is one sub-directory in the listing.
type Entry struct {
	Name   string
	Path   string
	Hidden bool
}

// List returns the sub-directories of dir sorted case-insensitively.
// Symlinks are followed. Dot-directories are skipped unless showHidden is set.
func List(dir string, showHidden bool) ([]Entry, error) {
	items, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(items))
	for _, item := range items {
		name := item.Name()
		hidden := strings.HasPrefix(name, ".")
		if hidden && !showHidden {
			continue
		}

		path := filepath.Join(dir, name)
		if !item.IsDir() {
			if item.Type()&os.ModeSymlink == 0 {
				continue
			}
			info, err := os.Stat(path)
			if err != nil || !info.IsDir() {
				continue
			}
		}
		entries = append(entries, Entry{Name: name, Path: path, Hidden: hidden})
	}

	slices.SortStableFunc(entries, func(a, b Entry) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return entries, nil
}

// parentOf returns the parent of dir and false when dir is already a root.
func parentOf(dir string) (string, bool) {
	parent := filepath.Dir(dir)
	if parent == dir {
		return dir, false
	}
	return parent, true
}

// nearestExisting walks up from dir to the first directory that still exists.
func nearestExisting(dir string) string {
	for {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
		parent, ok := parentOf(dir)
		if !ok {
			return dir
		}
		dir = parent
	}
}
