package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/timelyfdw/timelyfdw/physical"
)

// TableConfig is a foreign table: the options describing how to reach the data and its declared columns.
type TableConfig struct {
	Name    string                      `yaml:"name"`
	Options physical.Options            `yaml:"options"`
	Columns []physical.ColumnDefinition `yaml:"columns"`
}

type Config struct {
	Tables []TableConfig `yaml:"tables"`
}

func (config *Config) GetTableConfig(name string) (*TableConfig, error) {
	for i := range config.Tables {
		if config.Tables[i].Name == name {
			return &config.Tables[i], nil
		}
	}

	return nil, errors.Wrapf(ErrNotFound, "table %s", name)
}

func (config *Config) TableNames() []string {
	out := make([]string, len(config.Tables))
	for i := range config.Tables {
		out[i] = config.Tables[i].Name
	}
	return out
}

func ReadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't open file")
	}
	defer f.Close()

	var config Config

	err = yaml.NewDecoder(f).Decode(&config)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't decode yaml configuration")
	}

	seen := make(map[string]struct{}, len(config.Tables))
	for i := range config.Tables {
		name := config.Tables[i].Name
		if name == "" {
			return nil, errors.Errorf("table %d has no name", i)
		}
		if _, ok := seen[name]; ok {
			return nil, errors.Errorf("table %s configured more than once", name)
		}
		seen[name] = struct{}{}
		if config.Tables[i].Options == nil {
			config.Tables[i].Options = physical.Options{}
		}
	}

	return &config, nil
}
