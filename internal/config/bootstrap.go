package config

import (
	"errors"
	"os"
)

// DefaultPath is picked up from the working directory when --config is not given.
const DefaultPath = "prospect.yml"

// Resolve returns the config file to load. An explicit path must exist; the
// default path is optional and "" means run on defaults.
func Resolve(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", err
		}
		return explicit, nil
	}
	_, err := os.Stat(DefaultPath)
	if err == nil {
		return DefaultPath, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}
	return "", nil
}

// EnsureUserConfig writes the default config to path unless a file is
// already there. It reports whether a file was created.
func EnsureUserConfig(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return false, err
	}
	if err := SaveAtomic(path, Default()); err != nil {
		return false, err
	}
	return true, nil
}
