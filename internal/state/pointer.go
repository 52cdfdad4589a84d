package state

import (
	"fmt"
	"os"
)

// Pointer is the global current-wallpaper indirection: a symlink in the
// user's home directory that always resolves to the last successfully
// applied original image, never an effect derivative.
type Pointer struct {
	path string
}

// NewPointer returns a Pointer at path.
func NewPointer(path string) *Pointer {
	return &Pointer{path: path}
}

// Path returns the symlink location.
func (p *Pointer) Path() string { return p.path }

// Read returns the pointer target, or "" when the pointer does not exist.
func (p *Pointer) Read() (string, error) {
	target, err := os.Readlink(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return target, nil
}

// Update atomically repoints the symlink at target: the new link is created
// under a temporary name and renamed over the old one, so a reader never
// observes a missing or half-written pointer.
func (p *Pointer) Update(target string) error {
	tmp := p.path + ".tmp"
	if err := os.Remove(tmp); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear temp pointer: %w", err)
	}
	if err := os.Symlink(target, tmp); err != nil {
		return fmt.Errorf("failed to create pointer symlink: %w", err)
	}
	if err := os.Rename(tmp, p.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace pointer symlink: %w", err)
	}
	return nil
}
