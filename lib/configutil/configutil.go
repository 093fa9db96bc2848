package configutil

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

// ReadConfig reads a json5 configuration file. `name` should come with a
// file extension; a sibling `<name>.local.<ext>` file, if present, is merged
// on top of it so secrets and per-machine overrides stay out of the checked
// in file.
func ReadConfig[T any](name string) (T, error) {
	var out T
	allNotFound := true

	defaultFile, err := os.ReadFile(name)
	if err != nil && !os.IsNotExist(err) {
		return out, err
	}
	if len(defaultFile) > 0 {
		err = json5.Unmarshal(defaultFile, &out)
		if err != nil {
			return out, err
		}
		allNotFound = false
	}

	localPath := localName(name)
	localFile, err := os.ReadFile(localPath)
	if err != nil && !os.IsNotExist(err) {
		return out, err
	}
	if len(localFile) > 0 {
		var override T
		err = json5.Unmarshal(localFile, &override)
		if err != nil {
			return out, err
		}
		err = mergo.Merge(&out, override, mergo.WithOverride)
		if err != nil {
			return out, err
		}
		slog.Info("merging config with local overrides", "local", localPath)
		allNotFound = false
	}

	if allNotFound {
		return out, os.ErrNotExist
	}

	return out, nil
}

func localName(name string) string {
	dir := filepath.Dir(name)
	base := filepath.Base(name)

	ext := filepath.Ext(base)
	prefix := strings.TrimSuffix(base, ext)
	ext = strings.TrimPrefix(ext, ".")

	return filepath.Join(dir, fmt.Sprintf("%s.local.%s", prefix, ext))
}

// ReadRecursively is ReadConfig but it walks up the filesystem from the
// working directory until the root to find a configuration file matching
// the name.
func ReadRecursively[T any](name string) (T, error) {
	var defaultOut T

	root, err := filepath.Abs("/")
	if err != nil {
		return defaultOut, err
	}
	current, err := os.Getwd()
	if err != nil {
		return defaultOut, err
	}

	for current != root {
		config, err := ReadConfig[T](filepath.Join(current, name))
		if os.IsNotExist(err) {
			current = filepath.Join(current, "..")
			continue
		}
		if err != nil {
			return defaultOut, err
		}

		return config, nil
	}

	return defaultOut, os.ErrNotExist
}
