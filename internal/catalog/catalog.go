// ABOUTME: Directory-backed catalog of raw PCM files
// ABOUTME: Lists .pcm assets and reads them after rejecting path traversal
package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Extension is the file suffix of playable assets
const Extension = ".pcm"

var (
	// ErrInvalidName is returned for names that could escape the data directory
	ErrInvalidName = errors.New("invalid file name")

	// ErrNotFound is returned when a named asset does not exist
	ErrNotFound = errors.New("file not found")
)

// Asset identifies a playable file
type Asset struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// Catalog lists and reads PCM files from one directory
type Catalog struct {
	dir string
}

// New creates a catalog over dir, creating the directory if needed
func New(dir string) (*Catalog, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &Catalog{dir: dir}, nil
}

// Dir returns the catalog directory
func (c *Catalog) Dir() string {
	return c.dir
}

// ValidateName rejects empty names and names containing "..", "/" or "\"
func ValidateName(name string) error {
	if name == "" || strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// List returns the .pcm files in the directory, newest first
func (c *Catalog) List() ([]Asset, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read data directory: %w", err)
	}

	assets := make([]Asset, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), Extension) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// Removed between ReadDir and Info
			log.Printf("Skipping %s: %v", entry.Name(), err)
			continue
		}
		assets = append(assets, Asset{
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.SliceStable(assets, func(i, j int) bool {
		if assets[i].ModTime.Equal(assets[j].ModTime) {
			return assets[i].Name < assets[j].Name
		}
		return assets[i].ModTime.After(assets[j].ModTime)
	})

	return assets, nil
}

// Path returns the on-disk path of a validated name
func (c *Catalog) Path(name string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	return filepath.Join(c.dir, name), nil
}

// Stat returns the asset record for name
func (c *Catalog) Stat(name string) (Asset, error) {
	path, err := c.Path(name)
	if err != nil {
		return Asset{}, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return Asset{}, wrapNotFound(name, err)
	}
	if info.IsDir() {
		return Asset{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	return Asset{Name: name, Size: info.Size(), ModTime: info.ModTime()}, nil
}

// ReadAll returns the full contents of the named file
func (c *Catalog) ReadAll(name string) ([]byte, error) {
	path, err := c.Path(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wrapNotFound(name, err)
	}
	return data, nil
}

func wrapNotFound(name string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return fmt.Errorf("failed to read %s: %w", name, err)
}
