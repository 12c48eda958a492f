// Copyright © 2021 Optable Technologies Inc. All rights reserved.
// See LICENSE for details.
package config

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// JSONLoader reads and writes profiles as JSON. It implements
// cli.ConfigLoader. Loaded profiles have their defaults applied and are
// validated.
type JSONLoader struct{}

func (l *JSONLoader) Unmarshal(b []byte) (interface{}, error) {
	conf := Default()
	if err := json.Unmarshal(b, &conf); err != nil {
		return nil, fmt.Errorf("failed decoding json profile: %w", err)
	}
	if err := finish(&conf); err != nil {
		return nil, err
	}
	return &conf, nil
}

func (l *JSONLoader) Marshal(obj interface{}) ([]byte, error) {
	return json.MarshalIndent(obj, "", "  ")
}

// YAMLLoader is the YAML counterpart of JSONLoader.
type YAMLLoader struct{}

func (l *YAMLLoader) Unmarshal(b []byte) (interface{}, error) {
	conf := Default()
	if err := yaml.Unmarshal(b, &conf); err != nil {
		return nil, fmt.Errorf("failed decoding yaml profile: %w", err)
	}
	if err := finish(&conf); err != nil {
		return nil, err
	}
	return &conf, nil
}

func (l *YAMLLoader) Marshal(obj interface{}) ([]byte, error) {
	return yaml.Marshal(obj)
}

func finish(conf *Config) error {
	conf.SetDefaults()
	if err := conf.Validate(); err != nil {
		return fmt.Errorf("invalid profile: %w", err)
	}
	return nil
}

// FromProfile asserts the value returned by a loader.
func FromProfile(v interface{}) (*Config, error) {
	switch conf := v.(type) {
	case *Config:
		return conf, nil
	case Config:
		return &conf, nil
	default:
		return nil, fmt.Errorf("unexpected profile type %T", v)
	}
}
