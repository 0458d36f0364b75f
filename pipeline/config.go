package pipeline

import (
	"os"

	"golang.org/x/xerrors"
	"gopkg.in/yaml.v2"
)

// LoadConfig reads the configuration from a YAML file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, xerrors.Errorf("couldn't read config: %v", err)
	}

	cfg := Config{}

	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return Config{}, xerrors.Errorf("couldn't unmarshal config: %v", err)
	}

	return cfg, nil
}
