// Package library scans the wallpaper directory and orders cycling through
// it per monitor.
package library

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// imageExtensions is the set of supported wallpaper file types.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".gif":  true,
	".webp": true,
	".tiff": true,
}

// Library lists wallpapers from one directory.
type Library struct {
	dir string
}

// New returns a Library over dir.
func New(dir string) *Library {
	return &Library{dir: dir}
}

// Dir returns the wallpaper directory.
func (l *Library) Dir() string { return l.dir }

// List returns the absolute paths of every supported image, sorted by name.
// A missing directory yields an empty list, not an error.
func (l *Library) List() ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read wallpaper directory: %w", err)
	}

	var wallpapers []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			wallpapers = append(wallpapers, filepath.Join(l.dir, entry.Name()))
		}
	}
	sort.Strings(wallpapers)
	return wallpapers, nil
}

// Next returns the wallpaper after current in sort order, wrapping at the
// end. An unknown or empty current starts from the first wallpaper.
func (l *Library) Next(current string) (string, error) {
	return l.step(current, 1)
}

// Prev returns the wallpaper before current, wrapping at the start.
func (l *Library) Prev(current string) (string, error) {
	return l.step(current, -1)
}

func (l *Library) step(current string, delta int) (string, error) {
	wallpapers, err := l.List()
	if err != nil {
		return "", err
	}
	if len(wallpapers) == 0 {
		return "", fmt.Errorf("no wallpapers in %s", l.dir)
	}

	idx := -1
	for i, w := range wallpapers {
		if w == current {
			idx = i
			break
		}
	}
	if idx < 0 {
		// Unknown position: start of the list going forward, end going
		// backward.
		if delta > 0 {
			return wallpapers[0], nil
		}
		return wallpapers[len(wallpapers)-1], nil
	}
	n := len(wallpapers)
	return wallpapers[((idx+delta)%n+n)%n], nil
}
