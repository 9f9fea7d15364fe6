package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths holds resolved absolute file system locations
type Paths struct {
	BaseDir    string
	DataFile   string
	ExportDir  string
	LogsDir    string
	ExportFile string
}

// GetPaths resolves the configured paths. An empty BaseDir means the working directory.
func (c *Config) GetPaths() (*Paths, error) {
	base := c.Paths.BaseDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		base = wd
	}
	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	exportDir := ResolvePath(base, c.Paths.ExportDir)
	return &Paths{
		BaseDir:    base,
		DataFile:   ResolvePath(base, c.Paths.DataFile),
		ExportDir:  exportDir,
		LogsDir:    ResolvePath(base, c.Paths.LogsDir),
		ExportFile: filepath.Join(exportDir, c.Export.FileName),
	}, nil
}

// ResolvePath returns p unchanged when absolute, otherwise joined onto base
func ResolvePath(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// EnsureDirectories creates the output directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.ExportDir, p.LogsDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// FileExists reports whether path exists and is a regular file
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
