package config

import (
	"log"
	"path/filepath"

	"github.com/spf13/afero"
)

// Initialize writes the default configuration into the directory unless one
// already exists, then loads it.
func Initialize(dir string, logger *log.Logger) (*Configuration, error) {
	return initialize(afero.NewOsFs(), dir, logger)
}

func initialize(fsys afero.Fs, dir string, logger *log.Logger) (*Configuration, error) {
	cfgPath := filepath.Join(dir, ConfigurationName)

	exists, err := afero.Exists(fsys, cfgPath)
	if err != nil {
		return nil, err
	}
	if exists {
		logger.Printf("Configuration %q already exists, leaving it untouched.", cfgPath)
	} else {
		logger.Printf("Writing default configuration to %q.", cfgPath)
		if err := afero.WriteFile(fsys, cfgPath, defaultConfigData, 0644); err != nil {
			return nil, err
		}
	}

	return load(fsys, dir)
}
