// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.
package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
)

// ConfigLoader turns the content of a profile file into a value and back.
type ConfigLoader interface {
	Unmarshal([]byte) (interface{}, error)
	Marshal(interface{}) ([]byte, error)
}

// ConfigDir manages named configuration profiles stored in a directory. One
// of them can be marked as current.
type ConfigDir struct {
	path   string
	loader ConfigLoader
}

// The known suffix allows other programs to write files in the config dir
// without being picked up by the facility.
const configExt = ".conf"

const currentLink = "current"

var (
	ErrNoCurrent    = errors.New("no current profile")
	ErrInvalidName  = errors.New("invalid profile name")
	ErrNoSuchConfig = errors.New("no such profile")
)

func NewConfigDir(path string, loader ConfigLoader) (*ConfigDir, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !stat.Mode().IsDir() {
		return nil, fmt.Errorf("%s is not a directory", path)
	}

	return &ConfigDir{path, loader}, nil
}

// DefaultConfigDirPath is where profiles live unless told otherwise, i.e.
// $XDG_CONFIG_HOME/<app>/profiles.
func DefaultConfigDirPath(app string) string {
	return filepath.Join(xdg.ConfigHome, app, "profiles")
}

// OpenDefaultConfigDir opens, creating it if needed, the default profile
// directory of app.
func OpenDefaultConfigDir(app string, loader ConfigLoader) (*ConfigDir, error) {
	path := DefaultConfigDirPath(app)
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed creating config dir %s: %w", path, err)
	}
	return NewConfigDir(path, loader)
}

func (c *ConfigDir) Path() string {
	return c.path
}

func (c *ConfigDir) LoadPath(path string) (interface{}, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed loading config at %s: %w", path, err)
	}

	config, err := c.loader.Unmarshal(bytes)
	if err != nil {
		return nil, fmt.Errorf("failed loading config at %s: %w", path, err)
	}
	return config, nil
}

func (c *ConfigDir) DumpPath(path string, configData interface{}) error {
	bytes, err := c.loader.Marshal(configData)
	if err != nil {
		return fmt.Errorf("failed marshaling config at %s: %w", path, err)
	}

	return os.WriteFile(path, bytes, 0644)
}

func validName(name string) bool {
	return name != "" && name != currentLink && !strings.ContainsAny(name, `/\`) && name != "." && name != ".."
}

func (c *ConfigDir) configPath(name string) string {
	return filepath.Join(c.path, name) + configExt
}

func (c *ConfigDir) Get(name string) (interface{}, error) {
	if !validName(name) {
		return nil, fmt.Errorf("%q: %w", name, ErrInvalidName)
	}
	path := c.configPath(name)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%q: %w", name, ErrNoSuchConfig)
	}
	return c.LoadPath(path)
}

func (c *ConfigDir) Set(name string, configData interface{}) error {
	if !validName(name) {
		return fmt.Errorf("%q: %w", name, ErrInvalidName)
	}
	return c.DumpPath(c.configPath(name), configData)
}

// Use marks name as the current profile, replacing any previous choice.
func (c *ConfigDir) Use(name string) error {
	if !validName(name) {
		return fmt.Errorf("%q: %w", name, ErrInvalidName)
	}
	if _, err := os.Stat(c.configPath(name)); err != nil {
		return fmt.Errorf("%q: %w", name, ErrNoSuchConfig)
	}

	linkPath := filepath.Join(c.path, currentLink)
	if err := os.Remove(linkPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed replacing current link: %w", err)
	}
	// The link is relative so that the directory can be moved around.
	return os.Symlink(name+configExt, linkPath)
}

// Remove deletes a profile. If it was current, the current link goes too.
func (c *ConfigDir) Remove(name string) error {
	if !validName(name) {
		return fmt.Errorf("%q: %w", name, ErrInvalidName)
	}

	if current, err := c.currentName(); err == nil && current == name {
		if err := os.Remove(filepath.Join(c.path, currentLink)); err != nil {
			return fmt.Errorf("failed removing current link: %w", err)
		}
	}

	if err := os.Remove(c.configPath(name)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%q: %w", name, ErrNoSuchConfig)
		}
		return err
	}
	return nil
}

func configName(path string) string {
	return filepath.Base(strings.TrimSuffix(path, configExt))
}

func (c *ConfigDir) List() ([]string, error) {
	entries, err := os.ReadDir(c.path)
	if err != nil {
		return nil, err
	}

	list := make([]string, 0, len(entries))
	for _, entry := range entries {
		if filepath.Ext(entry.Name()) != configExt || !entry.Type().IsRegular() {
			continue
		}

		list = append(list, configName(entry.Name()))
	}

	return list, nil
}

func (c *ConfigDir) currentPath() (string, error) {
	linkPath := filepath.Join(c.path, currentLink)
	info, err := os.Lstat(linkPath)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNoCurrent
	} else if err != nil {
		return "", err
	}

	if info.Mode()&os.ModeSymlink == 0 {
		return "", errors.New("invalid current link")
	}

	target, err := os.Readlink(linkPath)
	if err != nil {
		return "", fmt.Errorf("failed loading current link: %w", err)
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(c.path, target)
	}
	return target, nil
}

func (c *ConfigDir) currentName() (string, error) {
	path, err := c.currentPath()
	if err != nil {
		return "", err
	}
	return configName(path), nil
}

// Current returns the name and content of the current profile. It returns
// ErrNoCurrent when none was selected.
func (c *ConfigDir) Current() (string, interface{}, error) {
	currentPath, err := c.currentPath()
	if err != nil {
		return "", nil, err
	}

	config, err := c.LoadPath(currentPath)
	if err != nil {
		return "", nil, fmt.Errorf("failed loading current config: %w", err)
	}
	return configName(currentPath), config, nil
}
